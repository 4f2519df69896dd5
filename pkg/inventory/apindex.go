package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/newtron-network/apbss/pkg/aos"
	"github.com/newtron-network/apbss/pkg/model"
	"github.com/newtron-network/apbss/pkg/util"
)

// "show ap database long" columns.
const (
	colAPName   = "Name"
	colAPGroup  = "Group"
	colAPType   = "AP Type"
	colAPSerial = "Serial #"
	colAPMAC    = "Wired MAC Address"
)

// Index maps AP name to its inventory record. It is built once and only
// read afterwards.
type Index struct {
	byName map[string]model.AccessPoint
}

// NewIndex builds an index from records. Duplicate names are not an error:
// the last record with a given name wins.
func NewIndex(aps []model.AccessPoint) *Index {
	idx := &Index{byName: make(map[string]model.AccessPoint, len(aps))}
	for _, ap := range aps {
		idx.byName[ap.Name] = ap
	}
	return idx
}

// Lookup returns the AP with the given name.
func (i *Index) Lookup(name string) (model.AccessPoint, bool) {
	ap, ok := i.byName[name]
	return ap, ok
}

// Len returns the number of distinct AP names.
func (i *Index) Len() int {
	return len(i.byName)
}

// BuildIndex fetches the conductor's AP database and indexes it by name.
// A response without the AP Database collection is an *util.IndexBuildError.
func BuildIndex(ctx context.Context, s MappingShower) (*Index, error) {
	m, err := s.ShowMapping(ctx, APDatabaseCommand)
	if err != nil {
		return nil, fmt.Errorf("building AP index: %w", err)
	}

	rows, err := m.Rows(APDatabaseTable)
	if err != nil {
		if errors.Is(err, aos.ErrNoCollection) {
			return nil, &util.IndexBuildError{Collection: APDatabaseTable}
		}
		return nil, fmt.Errorf("building AP index: %w", util.NewRequestError(s.Host(), APDatabaseCommand, 0, err))
	}

	aps := make([]model.AccessPoint, 0, len(rows))
	for _, r := range rows {
		aps = append(aps, model.AccessPoint{
			Name:     r.Get(colAPName),
			Group:    r.Get(colAPGroup),
			Model:    r.Get(colAPType),
			Serial:   r.Get(colAPSerial),
			WiredMAC: r.Get(colAPMAC),
		})
	}

	idx := NewIndex(aps)
	if dup := len(aps) - idx.Len(); dup > 0 {
		util.WithDevice(s.Host()).Warnf("AP database has %d duplicate names; keeping the last record for each", dup)
	}
	util.WithDevice(s.Host()).Debugf("Indexed %d APs", idx.Len())
	return idx, nil
}
