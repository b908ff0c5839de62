package monitor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/tiling"
)

// ClientJSON is a persisted client entry. Name and Index are informative;
// only XID is read back.
type ClientJSON struct {
	XID   uint32 `json:"xid"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// MonitorJSON is the persisted form of a monitor. A null Function means no
// layout.
type MonitorJSON struct {
	NMaster  int          `json:"nmaster"`
	MFact    float64      `json:"mfact"`
	Function *string      `json:"function"`
	Strut    Strut        `json:"strut"`
	Clients  []ClientJSON `json:"clients"`
}

// WorkspaceJSON lists the monitors of one workspace, primary first.
type WorkspaceJSON struct {
	Monitors []MonitorJSON `json:"monitors"`
}

// Blob is the persisted workspace state.
type Blob struct {
	Workspaces []WorkspaceJSON `json:"workspaces"`
}

// ToJSON returns the persisted form of m. nameOf resolves client titles and
// may be nil.
func (m *Monitor) ToJSON(nameOf func(platform.WindowID) string) MonitorJSON {
	out := MonitorJSON{
		NMaster: m.NMaster,
		MFact:   m.MFact,
		Strut:   m.Strut,
		Clients: make([]ClientJSON, 0, len(m.Clients)),
	}
	if m.Layout != tiling.None {
		key := string(m.Layout)
		out.Function = &key
	}
	for i, id := range m.Clients {
		c := ClientJSON{XID: uint32(id), Index: i}
		if nameOf != nil {
			c.Name = nameOf(id)
		}
		out.Clients = append(out.Clients, c)
	}
	return out
}

// FromJSON loads fields present in data and keeps the current value of
// missing ones. Malformed fields are skipped and reported together.
func (m *Monitor) FromJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("monitor state: %w", err)
	}

	var errs []error
	decode := func(key string, dst any) bool {
		raw, ok := fields[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			errs = append(errs, fmt.Errorf("monitor state %q: %w", key, err))
			return false
		}
		return true
	}

	var nmaster int
	if decode("nmaster", &nmaster) {
		m.NMaster = max(nmaster, 0)
	}
	var mfact float64
	if decode("mfact", &mfact) {
		m.MFact = min(max(mfact, MinMFact), MaxMFact)
	}
	var function *string
	if decode("function", &function) {
		if function == nil {
			m.Layout = tiling.None
		} else if key, err := tiling.ParseLayoutKey(*function); err != nil {
			errs = append(errs, fmt.Errorf("monitor state \"function\": %w", err))
		} else {
			m.Layout = key
		}
	}
	var strut Strut
	if decode("strut", &strut) {
		m.Strut = strut
	}
	var clients []ClientJSON
	if decode("clients", &clients) {
		m.Clients = make([]platform.WindowID, 0, len(clients))
		for _, c := range clients {
			m.Clients = append(m.Clients, platform.WindowID(c.XID))
		}
	}
	return errors.Join(errs...)
}

// ToJSON returns the state of every workspace up to the workspace count.
func (s *Set) ToJSON(nameOf func(platform.WindowID) string) Blob {
	count := s.workspaces
	for ws := range s.primaries {
		count = max(count, ws+1)
	}
	blob := Blob{Workspaces: make([]WorkspaceJSON, 0, count)}
	for ws := 0; ws < count; ws++ {
		var entry WorkspaceJSON
		for _, m := range s.Primary(ws).Chain() {
			entry.Monitors = append(entry.Monitors, m.ToJSON(nameOf))
		}
		blob.Workspaces = append(blob.Workspaces, entry)
	}
	return blob
}

// FromJSON loads a persisted blob. Monitors are loaded in chain order;
// secondary state without a secondary monitor is kept until one appears.
func (s *Set) FromJSON(data []byte) error {
	var blob struct {
		Workspaces []struct {
			Monitors []json.RawMessage `json:"monitors"`
		} `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("workspace state: %w", err)
	}

	var errs []error
	for ws, entry := range blob.Workspaces {
		primary := s.Primary(ws)
		for i, raw := range entry.Monitors {
			switch i {
			case 0:
				if err := primary.FromJSON(raw); err != nil {
					errs = append(errs, fmt.Errorf("workspace %d: %w", ws, err))
				}
			case 1:
				next := primary.Next()
				if next == nil {
					s.pending[ws] = raw
					continue
				}
				if err := next.FromJSON(raw); err != nil {
					errs = append(errs, fmt.Errorf("workspace %d: %w", ws, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}
