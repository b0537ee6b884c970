package models

import "fmt"

// Source is the scheduler's view of a PlaylistSource record: either Manual or Fetched.
type Source interface {
	isSource()
}

// Manual is an operator-declared number of units.
type Manual struct {
	TotalUnits int
}

// Fetched is a playlist read from the video host. Private and deleted videos are not schedulable.
type Fetched struct {
	AvailableUnits int
	PrivateUnits   int
}

func (Manual) isSource()  {}
func (Fetched) isSource() {}

// GetTotalUnits returns the number of units a plan must cover for s.
func GetTotalUnits(s Source) int {
	switch v := s.(type) {
	case Manual:
		return v.TotalUnits
	case Fetched:
		return v.AvailableUnits
	default:
		return 0
	}
}

// AsSource converts the stored record into its variant.
func (p *PlaylistSource) AsSource() (Source, error) {
	switch p.Kind {
	case SourceManual:
		return Manual{TotalUnits: p.ManualTotal}, nil
	case SourceFetched:
		return Fetched{AvailableUnits: p.AvailableUnits, PrivateUnits: p.PrivateUnits}, nil
	default:
		return nil, fmt.Errorf("playlist source %d has unknown kind %q", p.ID, p.Kind)
	}
}

// TotalUnits is a shortcut for GetTotalUnits on the record's variant; unknown kinds count as 0.
func (p *PlaylistSource) TotalUnits() int {
	s, err := p.AsSource()
	if err != nil {
		return 0
	}
	return GetTotalUnits(s)
}
