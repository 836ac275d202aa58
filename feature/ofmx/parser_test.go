package ofmx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aero-importer/core/aero"
	"aero-importer/core/geo"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `<?xml version="1.0" encoding="UTF-8"?>
<OFMX-Snapshot version="0.1" origin="test" effective="2026-01-22T00:00:00Z" expiration="2026-02-19T00:00:00Z">
  <Org><OrgUid><txtName>CZECH REPUBLIC</txtName></OrgUid></Org>
  <Ahp>
    <AhpUid mid="AH0001ID" region="LK"><codeId>LKPR</codeId></AhpUid>
    <txtName>PRAHA/RUZYNE</txtName>
    <codeIcao>LKPR</codeIcao>
    <codeType>AD</codeType>
    <geoLat>500603.00N</geoLat>
    <geoLong>0141537.00E</geoLong>
    <valElev>1247</valElev>
    <uomDistVer>FT</uomDistVer>
    <valMagVar>4.2</valMagVar>
    <dateMagVar>2020</dateMagVar>
    <txtNameCitySer>PRAHA</txtNameCitySer>
  </Ahp>
  <Rwy>
    <RwyUid mid="RW0001ID"><AhpUid mid="AH0001ID" region="LK"><codeId>LKPR</codeId></AhpUid><txtDesig>06/24</txtDesig></RwyUid>
    <valLen>3715</valLen>
    <valWid>45</valWid>
    <uomDimRwy>M</uomDimRwy>
    <codeComposition>ASPH</codeComposition>
  </Rwy>
  <Rdn>
    <RdnUid mid="RD0001ID">
      <RwyUid mid="RW0001ID"><AhpUid mid="AH0001ID" region="LK"><codeId>LKPR</codeId></AhpUid><txtDesig>06/24</txtDesig></RwyUid>
      <txtDesig>06</txtDesig>
    </RdnUid>
    <geoLat>500541.58N</geoLat>
    <geoLong>0141331.02E</geoLong>
    <valTrueBrg>64.6</valTrueBrg>
  </Rdn>
  <Ase>
    <AseUid mid="AS0001ID" region="LK"><codeType>CTR</codeType><codeId>LKPRCTR</codeId></AseUid>
    <txtName>PRAHA CTR</txtName>
    <codeClass>D</codeClass>
    <codeDistVerUpper>ALT</codeDistVerUpper>
    <valDistVerUpper>4000</valDistVerUpper>
    <uomDistVerUpper>FT</uomDistVerUpper>
    <codeDistVerLower>HEI</codeDistVerLower>
    <valDistVerLower>0</valDistVerLower>
    <uomDistVerLower>FT</uomDistVerLower>
  </Ase>
  <Dpn>
    <DpnUid mid="DP0001ID" region="LK"><codeId>ABBOV</codeId><geoLat>493000.00N</geoLat><geoLong>0150000.00E</geoLong></DpnUid>
    <codeType>ICAO</codeType>
    <txtName>ABBOV</txtName>
  </Dpn>
  <Vor>
    <VorUid mid="VO0001ID" region="LK"><codeId>OKL</codeId><geoLat>500550.00N</geoLat><geoLong>0141600.00E</geoLong></VorUid>
    <txtName>PRAHA</txtName>
    <codeType>DVOR</codeType>
    <valFreq>112.60</valFreq>
    <uomFreq>MHZ</uomFreq>
    <codeDatum>WGE</codeDatum>
  </Vor>
  <Dme>
    <DmeUid mid="DM0001ID" region="LK"><codeId>OKL</codeId><geoLat>500550.00N</geoLat><geoLong>0141600.00E</geoLong></DmeUid>
    <VorUid mid="VO0001ID" region="LK"><codeId>OKL</codeId></VorUid>
    <codeChannel>73X</codeChannel>
    <valGhostFreq>112.60</valGhostFreq>
  </Dme>
  <Ndb>
    <NdbUid region="LK"><codeId>PR</codeId><geoLat>500700.00N</geoLat><geoLong>0141000.00E</geoLong></NdbUid>
    <codeClass>L</codeClass>
    <valFreq>369</valFreq>
    <uomFreq>KHZ</uomFreq>
  </Ndb>
  <Sae><SaeUid><nested><deep/></nested></SaeUid></Sae>
</OFMX-Snapshot>
`

func parse(t *testing.T, doc string) *aero.Collector {
	t.Helper()
	c := aero.NewCollector()
	err := Parse(context.Background(), strings.NewReader(doc), aero.Provenance{Cycle: "2601", File: "lk.ofmx"}, c)
	require.NoError(t, err)
	return c
}

func TestParse(t *testing.T) {
	c := parse(t, snapshot)

	counts := c.Counts()
	assert.Equal(t, 1, counts[aero.KindAirport])
	assert.Equal(t, 1, counts[aero.KindRunway])
	assert.Equal(t, 1, counts[aero.KindRunwayEnd])
	assert.Equal(t, 1, counts[aero.KindAirspace])
	assert.Equal(t, 1, counts[aero.KindWaypoint])
	assert.Equal(t, 3, counts[aero.KindNavaid])
	assert.Empty(t, c.Rejections())

	recs := c.Records()

	apt, ok := recs[0].(*aero.Airport)
	require.True(t, ok)
	assert.Equal(t, "AH0001ID", apt.NativeID)
	assert.Equal(t, "LK", apt.Region)
	assert.Equal(t, "LKPR", apt.CodeID)
	assert.Equal(t, "PRAHA", apt.City)
	require.NotNil(t, apt.Elevation)
	assert.Equal(t, 1247.0, *apt.Elevation)
	require.NotNil(t, apt.MagVarYear)
	assert.Equal(t, 2020, *apt.MagVarYear)
	assert.InDelta(t, 14+15.0/60+37.0/3600, apt.Point.Lon(), 1e-6)
	assert.InDelta(t, 50+6.0/60+3.0/3600, apt.Point.Lat(), 1e-6)
	assert.Equal(t, aero.SourceOFMX, apt.Prov.Source)
	assert.Equal(t, "2601", apt.Prov.Cycle)
	assert.Greater(t, apt.Line, 1)

	rwy := recs[1].(*aero.Runway)
	assert.Equal(t, "AH0001ID", rwy.AirportRef)
	assert.Equal(t, "06/24", rwy.Designator)
	assert.Equal(t, "ASPH", rwy.Surface)

	end := recs[2].(*aero.RunwayEnd)
	assert.Equal(t, "RW0001ID", end.RunwayRef)
	assert.Equal(t, "AH0001ID", end.AirportRef)
	assert.Equal(t, "06", end.Designator)

	as := recs[3].(*aero.Airspace)
	assert.Equal(t, "CTR", as.CodeType)
	assert.Equal(t, "D", as.Class)
	assert.Equal(t, "ALT", as.Upper.Ref)
	require.NotNil(t, as.Upper.Value)
	assert.Equal(t, 4000, *as.Upper.Value)
	assert.Nil(t, as.Polygon)

	dme := recs[6].(*aero.Navaid)
	assert.Equal(t, "DME", dme.NavaidType)
	assert.Equal(t, "VO0001ID", dme.AssociatedVOR)
	assert.Equal(t, "73X", dme.Channel)

	ndb := recs[7].(*aero.Navaid)
	assert.Equal(t, "NDB:LK:PR", ndb.NativeID)
	assert.Equal(t, "L", ndb.CodeType)
	assert.Equal(t, "KHZ", ndb.FrequencyUOM)
}

func TestParse_SnapshotWindow(t *testing.T) {
	c := parse(t, snapshot)
	prov := c.Records()[0].Base().Prov

	require.NotNil(t, prov.ValidFrom)
	require.NotNil(t, prov.ValidTo)
	assert.Equal(t, time.Date(2026, time.January, 22, 0, 0, 0, 0, time.UTC), *prov.ValidFrom)
	assert.Equal(t, time.Date(2026, time.February, 19, 0, 0, 0, 0, time.UTC), *prov.ValidTo)
}

func TestParse_CompositeIDs(t *testing.T) {
	doc := `<OFMX-Snapshot>
  <Ahp><AhpUid region="LK"><codeId>LKKB</codeId></AhpUid><geoLat>500700.00N</geoLat><geoLong>0143200.00E</geoLong></Ahp>
  <Rwy><RwyUid><AhpUid region="LK"><codeId>LKKB</codeId></AhpUid><txtDesig>06/24</txtDesig></RwyUid></Rwy>
  <Ase><AseUid region="LK"><codeType>R</codeType><codeId>LKR1</codeId></AseUid><txtName>R1</txtName></Ase>
</OFMX-Snapshot>`

	recs := parse(t, doc).Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "AHP:LK:LKKB", recs[0].Base().NativeID)
	assert.Equal(t, "RWY:AHP:LK:LKKB:06/24", recs[1].Base().NativeID)
	assert.Equal(t, "AHP:LK:LKKB", recs[1].(*aero.Runway).AirportRef)
	assert.Equal(t, "ASE:LK:R:LKR1", recs[2].Base().NativeID)
}

func TestParse_MissingID(t *testing.T) {
	doc := `<OFMX-Snapshot>
  <Dpn><DpnUid><geoLat>500700.00N</geoLat><geoLong>0143200.00E</geoLong></DpnUid></Dpn>
</OFMX-Snapshot>`

	err := Parse(context.Background(), strings.NewReader(doc), aero.Provenance{File: "bad.ofmx"}, aero.NewCollector())
	var perr *aero.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Dpn", perr.Section)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "missing identifier")
}

func TestParse_BadCoordinateRejected(t *testing.T) {
	doc := `<OFMX-Snapshot>
  <Dpn><DpnUid mid="DP1"><codeId>BAD</codeId><geoLat>999999.00N</geoLat><geoLong>0143200.00E</geoLong></DpnUid></Dpn>
  <Dpn><DpnUid mid="DP2"><codeId>GOOD</codeId><geoLat>500700.00N</geoLat><geoLong>0143200.00E</geoLong></DpnUid></Dpn>
</OFMX-Snapshot>`

	c := parse(t, doc)
	require.Len(t, c.Records(), 1)
	assert.Equal(t, "DP2", c.Records()[0].Base().NativeID)

	rejects := c.Rejections()
	require.Len(t, rejects, 1)
	assert.Equal(t, aero.KindWaypoint, rejects[0].Kind)
	var gerr *geo.GeometryError
	assert.True(t, errors.As(rejects[0].Err, &gerr))
	assert.Contains(t, rejects[0].Err.Error(), "DP1")
}

func TestParse_MalformedXML(t *testing.T) {
	doc := "<OFMX-Snapshot>\n<Ahp><AhpUid mid=\"A\">\n</Ahp>"
	err := Parse(context.Background(), strings.NewReader(doc), aero.Provenance{}, aero.NewCollector())
	var perr *aero.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "malformed XML")
	assert.Greater(t, perr.Line, 0)

	err = Parse(context.Background(), strings.NewReader(""), aero.Provenance{}, aero.NewCollector())
	assert.Error(t, err)
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Parse(ctx, strings.NewReader(snapshot), aero.Provenance{}, aero.NewCollector())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseShapes(t *testing.T) {
	doc := `<OFMX-Snapshot>
  <Ase><AseUid mid="AS0001ID"/><gmlPosList>14.0,50.0 14.5,50.0,0 14.5,50.5 14.0,50.0</gmlPosList></Ase>
  <Ase><AseUid mid="AS0001ID"/><gmlPosList>1,1 2,2 3,1</gmlPosList></Ase>
  <Ase><AseUid mid="AS0002ID"/><gmlPosList>14.0,50.0 14.5,50.0</gmlPosList></Ase>
  <Ase><AseUid region="LK"><codeType>R</codeType><codeId>LKR1</codeId></AseUid><gmlPosList>15,49 16,49 16,50</gmlPosList></Ase>
</OFMX-Snapshot>`

	index := ShapeIndex{}
	rejects := aero.NewCollector()
	require.NoError(t, ParseShapes(context.Background(), strings.NewReader(doc), index, rejects))

	ring, ok := index.ByNativeID("AS0001ID")
	require.True(t, ok)
	assert.Equal(t, orb.Ring{{14, 50}, {14.5, 50}, {14.5, 50.5}, {14, 50}}, ring)

	_, ok = index.ByNativeID("AS0002ID")
	assert.False(t, ok)
	require.Len(t, rejects.Rejections(), 1)
	assert.Equal(t, aero.KindAirspace, rejects.Rejections()[0].Kind)

	_, ok = index.ByNativeID("ASE:LK:R:LKR1")
	assert.True(t, ok)
}

func TestParseShapes_MalformedPosition(t *testing.T) {
	_, err := posList("14.0;50.0 1,2 3,4")
	var gerr *geo.GeometryError
	assert.ErrorAs(t, err, &gerr)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lk", "isolated"), 0o755))
	for _, name := range []string{"lk/isolated/ofmx_lk.ofmx", "a.ofmx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("<x/>"), 0o644))
	}

	paths, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.ofmx"),
		filepath.Join(root, "lk", "isolated", "ofmx_lk.ofmx"),
	}, paths)

	single, err := Scan(filepath.Join(root, "a.ofmx"))
	require.NoError(t, err)
	assert.Len(t, single, 1)

	missing, err := Scan(filepath.Join(root, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSelectMember(t *testing.T) {
	names := []string{
		"ofm_lk/isolated/ofmx_lk_shapes.xml",
		"ofm_lk/isolated/ofmx_lk.ofmx",
		"ofm_lk/readme.txt",
	}

	name, ok := SelectMember(names)
	require.True(t, ok)
	assert.Equal(t, "ofm_lk/isolated/ofmx_lk.ofmx", name)

	name, ok = SelectShapes(names)
	require.True(t, ok)
	assert.Equal(t, "ofm_lk/isolated/ofmx_lk_shapes.xml", name)

	_, ok = SelectMember([]string{"readme.txt"})
	assert.False(t, ok)
}
