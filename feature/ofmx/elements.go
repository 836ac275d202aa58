package ofmx

import (
	"encoding/xml"
	"strings"
)

// uid is the identifying block of an OFMX feature. The same shape serves
// every Uid element; unused children stay empty.
type uid struct {
	Mid      string `xml:"mid,attr"`
	Region   string `xml:"region,attr"`
	CodeID   string `xml:"codeId"`
	CodeType string `xml:"codeType"`
	Desig    string `xml:"txtDesig"`
	GeoLat   string `xml:"geoLat"`
	GeoLong  string `xml:"geoLong"`
	Ahp      *uid   `xml:"AhpUid"`
	Rwy      *uid   `xml:"RwyUid"`
}

// composite joins parts behind a prefix. Any blank part yields "".
func composite(prefix string, parts ...string) string {
	out := prefix
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return ""
		}
		out += ":" + p
	}
	return out
}

func (u *uid) region() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.Region)
}

func (u *uid) airportID() string {
	if u == nil {
		return ""
	}
	if m := strings.TrimSpace(u.Mid); m != "" {
		return m
	}
	return composite("AHP", u.Region, u.CodeID)
}

func (u *uid) runwayID() string {
	if u == nil {
		return ""
	}
	if m := strings.TrimSpace(u.Mid); m != "" {
		return m
	}
	if apt := u.Ahp.airportID(); apt != "" {
		return composite("RWY", apt, u.Desig)
	}
	return ""
}

func (u *uid) runwayEndID() string {
	if u == nil {
		return ""
	}
	if m := strings.TrimSpace(u.Mid); m != "" {
		return m
	}
	if rwy := u.Rwy.runwayID(); rwy != "" {
		return composite("RDN", rwy, u.Desig)
	}
	return ""
}

func (u *uid) airspaceID() string {
	if u == nil {
		return ""
	}
	if m := strings.TrimSpace(u.Mid); m != "" {
		return m
	}
	return composite("ASE", u.Region, u.CodeType, u.CodeID)
}

// pointID covers Dpn and the navaid Uids, e.g. "VOR:LK:OKL".
func (u *uid) pointID(prefix string) string {
	if u == nil {
		return ""
	}
	if m := strings.TrimSpace(u.Mid); m != "" {
		return m
	}
	return composite(prefix, u.Region, u.CodeID)
}

type ahp struct {
	Uid              uid    `xml:"AhpUid"`
	Name             string `xml:"txtName"`
	CodeICAO         string `xml:"codeIcao"`
	CodeGPS          string `xml:"codeGps"`
	CodeType         string `xml:"codeType"`
	City             string `xml:"txtNameCitySer"`
	GeoLat           string `xml:"geoLat"`
	GeoLong          string `xml:"geoLong"`
	Elev             string `xml:"valElev"`
	ElevUOM          string `xml:"uomDistVer"`
	MagVar           string `xml:"valMagVar"`
	MagVarDate       string `xml:"dateMagVar"`
	TransitionAlt    string `xml:"valTransitionAlt"`
	TransitionAltUOM string `xml:"uomTransitionAlt"`
	Remarks          string `xml:"txtRmk"`
}

type rwy struct {
	Uid         uid    `xml:"RwyUid"`
	Len         string `xml:"valLen"`
	Wid         string `xml:"valWid"`
	UOMDim      string `xml:"uomDimRwy"`
	Composition string `xml:"codeComposition"`
	Preparation string `xml:"codePreparation"`
	PCNNote     string `xml:"txtPcnNote"`
	StripLen    string `xml:"valLenStrip"`
	StripWid    string `xml:"valWidStrip"`
	UOMDimStrip string `xml:"uomDimStrip"`
}

type rdn struct {
	Uid     uid    `xml:"RdnUid"`
	TrueBrg string `xml:"valTrueBrg"`
	MagBrg  string `xml:"valMagBrg"`
	GeoLat  string `xml:"geoLat"`
	GeoLong string `xml:"geoLong"`
}

type ase struct {
	Uid        uid    `xml:"AseUid"`
	Name       string `xml:"txtName"`
	LocalType  string `xml:"txtLocalType"`
	Class      string `xml:"codeClass"`
	UpperRef   string `xml:"codeDistVerUpper"`
	UpperValue string `xml:"valDistVerUpper"`
	UpperUOM   string `xml:"uomDistVerUpper"`
	LowerRef   string `xml:"codeDistVerLower"`
	LowerValue string `xml:"valDistVerLower"`
	LowerUOM   string `xml:"uomDistVerLower"`
	Remarks    string `xml:"txtRmk"`
}

type dpn struct {
	Uid      uid    `xml:"DpnUid"`
	Name     string `xml:"txtName"`
	CodeType string `xml:"codeType"`
}

// navaid decodes Vor, Ndb, Dme, Tcn and Mkr. Dme and Tcn carry the Uid of
// their associated VOR next to their own.
type navaid struct {
	XMLName  xml.Name
	Vor      *uid   `xml:"VorUid"`
	Ndb      *uid   `xml:"NdbUid"`
	Dme      *uid   `xml:"DmeUid"`
	Tcn      *uid   `xml:"TcnUid"`
	Mkr      *uid   `xml:"MkrUid"`
	Name     string `xml:"txtName"`
	CodeType string `xml:"codeType"`
	Class    string `xml:"codeClass"`
	Freq     string `xml:"valFreq"`
	FreqUOM  string `xml:"uomFreq"`
	Channel  string `xml:"codeChannel"`
	Ghost    string `xml:"valGhostFreq"`
	Datum    string `xml:"codeDatum"`
	Elev     string `xml:"valElev"`
	ElevUOM  string `xml:"uomDistVer"`
	MagVar   string `xml:"valMagVar"`
}

// own returns the navaid's own Uid and its associated VOR, if any.
func (n *navaid) own() (self, vor *uid) {
	switch n.XMLName.Local {
	case "Vor":
		return n.Vor, nil
	case "Ndb":
		return n.Ndb, nil
	case "Dme":
		return n.Dme, n.Vor
	case "Tcn":
		return n.Tcn, n.Vor
	default:
		return n.Mkr, nil
	}
}

var navaidTypes = map[string]string{
	"Vor": "VOR",
	"Ndb": "NDB",
	"Dme": "DME",
	"Tcn": "TACAN",
	"Mkr": "MKR",
}

// shapeAse is an Ase element of the shape-extension document.
type shapeAse struct {
	Uid     uid    `xml:"AseUid"`
	PosList string `xml:"gmlPosList"`
}
