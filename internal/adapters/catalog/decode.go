package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"supply-route-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Decode parses either a GeoJSON FeatureCollection of points or a flat JSON
// array of rows carrying "longitude" and "latitude". Records without usable
// coordinates are skipped.
func Decode(data []byte) ([]domain.SupplyLocation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("decode catalog: empty document")
	}

	if trimmed[0] == '[' {
		return decodeRows(trimmed)
	}
	return decodeFeatureCollection(trimmed)
}

func decodeFeatureCollection(data []byte) ([]domain.SupplyLocation, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: feature collection: %w", err)
	}

	out := make([]domain.SupplyLocation, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			log.Printf("catalog skip: index=%d reason=geometry %T is not a point", i, f.Geometry)
			continue
		}

		id := featureID(f.ID, f.Properties, i)
		loc, ok := fromProperties(id, domain.Coordinates{Lon: p.Lon(), Lat: p.Lat()}, f.Properties)
		if !ok {
			continue
		}
		out = append(out, loc)
	}

	return out, nil
}

func decodeRows(data []byte) ([]domain.SupplyLocation, error) {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode catalog: rows: %w", err)
	}

	out := make([]domain.SupplyLocation, 0, len(rows))
	for i, row := range rows {
		lon, lonOK := number(row["longitude"])
		lat, latOK := number(row["latitude"])
		if !lonOK || !latOK {
			log.Printf("catalog skip: index=%d reason=missing longitude/latitude", i)
			continue
		}

		loc, ok := fromProperties(featureID(nil, row, i), domain.Coordinates{Lon: lon, Lat: lat}, row)
		if !ok {
			continue
		}
		out = append(out, loc)
	}

	return out, nil
}

func fromProperties(id string, c domain.Coordinates, props map[string]any) (domain.SupplyLocation, bool) {
	if !c.Valid() {
		log.Printf("catalog skip: id=%s reason=invalid coordinates %s", id, c)
		return domain.SupplyLocation{}, false
	}

	capacity, ok := quantity(props["capacity"])
	if !ok || capacity < 0 {
		if raw, set := props["capacity"]; set && raw != nil {
			log.Printf("catalog capacity unusable, using 0: id=%s capacity=%q", id, text(raw))
		}
		capacity = 0
	}

	return domain.SupplyLocation{
		ID:          id,
		Name:        text(props["name"]),
		Material:    strings.TrimSpace(text(props["material"])),
		Capacity:    capacity,
		Coordinates: c,
		Status:      text(props["status"]),
		Manager:     text(props["manager"]),
		Address:     text(props["address"]),
		Holder:      holder(props["general_data"]),
		AllFields:   text(props["all_spaces_exploatation_fields"]),
	}, true
}

func featureID(id any, props map[string]any, index int) string {
	if s := text(id); s != "" {
		return s
	}
	if s := text(props["id"]); s != "" {
		return s
	}
	return "supply-" + strconv.Itoa(index)
}

// holder accepts general_data either as an embedded JSON string or as an
// object. Anything unparsable yields nil.
func holder(v any) *domain.Holder {
	var fields map[string]any
	switch g := v.(type) {
	case string:
		if strings.TrimSpace(g) == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(g), &fields); err != nil {
			return nil
		}
	case map[string]any:
		fields = g
	default:
		return nil
	}

	return &domain.Holder{
		Name:         text(fields["name"]),
		OIB:          text(fields["OIB"]),
		Street:       text(fields["street"]),
		PostalNumber: text(fields["postal_number"]),
		Settlement:   text(fields["settlement"]),
		State:        text(fields["state"]),
	}
}

// number reads a JSON number or a numeric string, accepting a decimal comma.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		return decimal(strings.TrimSpace(n))
	default:
		return 0, false
	}
}

// decimal parses "1200.5" or "1200,5". Mixed or repeated separators
// ("1.200,5", "1,200,000") are rejected.
func decimal(s string) (float64, bool) {
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") || strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// quantity is number for tonnages. A single comma followed by exactly three
// digits ("1,200") reads as thousands grouping and is rejected rather than
// taken as 1.2.
func quantity(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if i := strings.IndexByte(s, ','); i >= 0 && len(s)-i-1 == 3 {
			return 0, false
		}
	}
	return number(v)
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

// FilterByAddress keeps locations whose address contains any keyword,
// ignoring case. An empty keyword list keeps everything.
func FilterByAddress(locations []domain.SupplyLocation, keywords []string) []domain.SupplyLocation {
	if len(keywords) == 0 {
		return locations
	}

	out := make([]domain.SupplyLocation, 0, len(locations))
	for _, l := range locations {
		addr := strings.ToLower(l.Address)
		for _, k := range keywords {
			if k != "" && strings.Contains(addr, strings.ToLower(k)) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// FeatureCollection renders locations back to GeoJSON for map clients.
func FeatureCollection(locations []domain.SupplyLocation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range locations {
		f := geojson.NewFeature(orb.Point{l.Coordinates.Lon, l.Coordinates.Lat})
		f.ID = l.ID
		f.Properties["id"] = l.ID
		f.Properties["name"] = l.Name
		f.Properties["material"] = l.Material
		f.Properties["capacity"] = l.Capacity
		f.Properties["status"] = l.Status
		f.Properties["manager"] = l.Manager
		f.Properties["address"] = l.Address
		f.Properties["all_spaces_exploatation_fields"] = l.AllFields
		if l.Holder != nil {
			f.Properties["general_data"] = map[string]any{
				"name":          l.Holder.Name,
				"OIB":           l.Holder.OIB,
				"street":        l.Holder.Street,
				"postal_number": l.Holder.PostalNumber,
				"settlement":    l.Holder.Settlement,
				"state":         l.Holder.State,
			}
		}
		fc.Append(f)
	}
	return fc
}
