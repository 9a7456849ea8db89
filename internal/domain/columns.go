package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Collection columns are stored as JSON text so one pool row round-trips
// every field without child tables. Nil slices encode as "[]".

// PrizeShares is the ordered list of prize places, index 0 = place 1.
type PrizeShares []PrizeShare

// Participants is the pool roster in entry order.
type Participants []Participant

// Pairings holds one pairing per participant, in participant order.
type Pairings []Pairing

// Outcomes holds the prize-winning pairings in finishing order.
type Outcomes []Outcome

// Competitors is the pool's snapshot of competitor names taken at creation.
type Competitors []string

func (s PrizeShares) Value() (driver.Value, error)  { return jsonValue(s, len(s)) }
func (s Participants) Value() (driver.Value, error) { return jsonValue(s, len(s)) }
func (s Pairings) Value() (driver.Value, error)     { return jsonValue(s, len(s)) }
func (s Outcomes) Value() (driver.Value, error)     { return jsonValue(s, len(s)) }
func (s Competitors) Value() (driver.Value, error)  { return jsonValue(s, len(s)) }

func (s *PrizeShares) Scan(src any) error  { return scanJSON(s, src) }
func (s *Participants) Scan(src any) error { return scanJSON(s, src) }
func (s *Pairings) Scan(src any) error     { return scanJSON(s, src) }
func (s *Outcomes) Scan(src any) error     { return scanJSON(s, src) }
func (s *Competitors) Scan(src any) error  { return scanJSON(s, src) }

func jsonValue(v any, n int) (driver.Value, error) {
	if n == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanJSON[T any](dst *T, src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		var zero T
		*dst = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("domain: cannot scan %T into %T", src, dst)
	}
	return json.Unmarshal(data, dst)
}
