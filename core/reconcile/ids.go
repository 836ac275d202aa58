package reconcile

import (
	"fmt"
	"strings"

	"aero-importer/core/aero"

	"github.com/google/uuid"
)

// DefaultNamespace is the UUID namespace used when none is configured.
var DefaultNamespace = uuid.MustParse("0d3f6a8e-2b1c-5e47-9a60-4c8b7d2e1f35")

// IDs derives deterministic row ids.
type IDs struct {
	ns uuid.UUID
}

// NewIDs parses namespace. An empty namespace selects DefaultNamespace.
func NewIDs(namespace string) (IDs, error) {
	if namespace == "" {
		return IDs{ns: DefaultNamespace}, nil
	}
	ns, err := uuid.Parse(namespace)
	if err != nil {
		return IDs{}, fmt.Errorf("invalid reconcile namespace: %w", err)
	}
	return IDs{ns: ns}, nil
}

// For returns the row id of a uniqueness key.
func (g IDs) For(kind aero.Kind, key string) uuid.UUID {
	return uuid.NewSHA1(g.ns, []byte(string(kind)+":"+key))
}

// CanonicalID returns the canonical identifier of a native id.
func CanonicalID(native string) string {
	return strings.TrimSpace(native)
}

// AirspaceKey builds the composite uniqueness key of an airspace.
func AirspaceKey(ofmxID, region, codeID, codeType, name string) string {
	return strings.Join([]string{ofmxID, region, codeID, codeType, name}, "|")
}

// Key returns the uniqueness key of a raw record.
func Key(r aero.Record) string {
	m := r.Base()
	if a, ok := r.(*aero.Airspace); ok {
		return AirspaceKey(CanonicalID(m.NativeID), strings.TrimSpace(m.Region),
			strings.TrimSpace(a.CodeID), strings.TrimSpace(a.CodeType), strings.TrimSpace(a.Name))
	}
	return CanonicalID(m.NativeID)
}
