// Package scope resolves which records an acting authority may read or mutate,
// based on the national -> province -> city jurisdiction hierarchy and on
// ownership of opportunities.
package scope

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jonathan/talent-lifecycle/internal/schemas"
)

//go:embed jurisdictions.json
var defaultJurisdictions []byte

// Map is the static province -> city lookup. Keys are compared after NormalizeKey.
type Map struct {
	provinces      map[string][]string
	cityToProvince map[string]string
}

type mapDocument struct {
	Provinces map[string][]string `json:"provinces"`
}

// NormalizeKey lowercases, trims and collapses internal whitespace so that
// "Kota  Bandung " and "kota bandung" compare equal.
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}

// NewMap builds a Map from province names to city keys. A city listed under
// more than one province resolves to the first province in sorted order;
// ParseMap rejects such documents outright.
func NewMap(provinces map[string][]string) *Map {
	m := &Map{
		provinces:      make(map[string][]string, len(provinces)),
		cityToProvince: make(map[string]string),
	}
	names := make([]string, 0, len(provinces))
	for province := range provinces {
		names = append(names, province)
	}
	sort.Strings(names)
	for _, province := range names {
		p := NormalizeKey(province)
		for _, city := range provinces[province] {
			c := NormalizeKey(city)
			if c == "" {
				continue
			}
			m.provinces[p] = append(m.provinces[p], c)
			if _, taken := m.cityToProvince[c]; !taken {
				m.cityToProvince[c] = p
			}
		}
	}
	return m
}

// ParseMap validates a jurisdiction map document against its schema and builds a Map.
// Each city must belong to exactly one province.
func ParseMap(data []byte) (*Map, error) {
	if err := schemas.ValidateJurisdictionMap(data); err != nil {
		return nil, fmt.Errorf("invalid jurisdiction map: %w", err)
	}
	var doc mapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse jurisdiction map: %w", err)
	}
	if err := checkUniqueCities(doc.Provinces); err != nil {
		return nil, fmt.Errorf("invalid jurisdiction map: %w", err)
	}
	return NewMap(doc.Provinces), nil
}

func checkUniqueCities(provinces map[string][]string) error {
	names := make([]string, 0, len(provinces))
	for province := range provinces {
		names = append(names, province)
	}
	sort.Strings(names)
	owner := make(map[string]string)
	for _, province := range names {
		p := NormalizeKey(province)
		for _, city := range provinces[province] {
			c := NormalizeKey(city)
			if c == "" {
				continue
			}
			if prev, ok := owner[c]; ok && prev != p {
				return fmt.Errorf("city %q listed under both %q and %q", c, prev, p)
			}
			owner[c] = p
		}
	}
	return nil
}

// LoadMap reads and parses a jurisdiction map file.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jurisdiction map %s: %w", path, err)
	}
	return ParseMap(data)
}

// DefaultMap returns the built-in jurisdiction map.
func DefaultMap() *Map {
	m, err := ParseMap(defaultJurisdictions)
	if err != nil {
		panic(fmt.Sprintf("embedded jurisdiction map is invalid: %v", err))
	}
	return m
}

// CitiesOf returns the normalized city keys mapped under a province.
func (m *Map) CitiesOf(province string) []string {
	cities := m.provinces[NormalizeKey(province)]
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// ProvinceOf returns the province a city belongs to.
func (m *Map) ProvinceOf(city string) (string, bool) {
	p, ok := m.cityToProvince[NormalizeKey(city)]
	return p, ok
}

// Contains reports whether city is listed under province.
func (m *Map) Contains(province, city string) bool {
	c := NormalizeKey(city)
	for _, listed := range m.provinces[NormalizeKey(province)] {
		if listed == c {
			return true
		}
	}
	return false
}

// Provinces returns the normalized province keys in sorted order.
func (m *Map) Provinces() []string {
	out := make([]string, 0, len(m.provinces))
	for p := range m.provinces {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
