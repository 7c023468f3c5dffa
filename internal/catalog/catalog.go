// Package catalog holds the reference datasets and turns them into seed records.
package catalog

import (
	"embed"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/autoseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/Lumos-Labs-HQ/autoseed/internal/utils"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Lumos-Labs-HQ/autoseed"))

// StableID derives the identifier of a record from its domain and natural key.
func StableID(domain string, key types.Key) string {
	return uuid.NewSHA1(namespace, []byte(domain+"|"+key.String())).String()
}

func load[T any](file string) ([]T, error) {
	data, err := dataFS.ReadFile("data/" + file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	var out []T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return out, nil
}

// finish mints IDs and rejects empty or repeated natural keys.
func finish(domain string, records []seeder.Record) ([]seeder.Record, error) {
	seen := make(map[string]bool, len(records))
	for i := range records {
		key := records[i].Key
		for _, f := range key {
			if s, ok := f.Value.(string); ok && strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("%s record %d: empty %s", domain, i, f.Name)
			}
		}
		id := key.String()
		if seen[id] {
			return nil, fmt.Errorf("%s: duplicate natural key %s", domain, id)
		}
		seen[id] = true
		records[i].ID = StableID(domain, key)
	}
	return records, nil
}

func brandKey(name string) types.Key {
	return types.Key{{Name: "name", Value: name}}
}

func modelKey(brand, name string) types.Key {
	return types.Key{{Name: "brand", Value: brand}, {Name: "name", Value: name}}
}

func brandRef(name string) seeder.ParentRef {
	return seeder.ParentRef{Domain: DomainBrands, Collection: collections[DomainBrands], ID: StableID(DomainBrands, brandKey(name))}
}

type brandRow struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
	Founded int    `yaml:"founded"`
	Logo    string `yaml:"logo"`
}

func Brands() ([]seeder.Record, error) {
	rows, err := load[brandRow]("brands.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, seeder.Record{
			Key: brandKey(r.Name),
			Fields: map[string]interface{}{
				"slug":    utils.Slugify(r.Name),
				"country": r.Country,
				"founded": r.Founded,
			},
			Assets: map[string]string{"logo": r.Logo},
		})
	}
	return finish(DomainBrands, records)
}

type modelRow struct {
	Brand     string `yaml:"brand"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	YearStart int    `yaml:"year_start"`
}

func Models() ([]seeder.Record, error) {
	rows, err := load[modelRow]("models.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		parent := brandRef(r.Brand)
		records = append(records, seeder.Record{
			Key: modelKey(r.Brand, r.Name),
			Fields: map[string]interface{}{
				"brandId":   parent.ID,
				"slug":      utils.Slugify(r.Brand + " " + r.Name),
				"type":      r.Type,
				"yearStart": r.YearStart,
			},
			Parents: []seeder.ParentRef{parent},
		})
	}
	return finish(DomainModels, records)
}

type trimRow struct {
	Brand        string `yaml:"brand"`
	Model        string `yaml:"model"`
	Name         string `yaml:"name"`
	Engine       string `yaml:"engine"`
	Fuel         string `yaml:"fuel"`
	Transmission string `yaml:"transmission"`
}

func Trims() ([]seeder.Record, error) {
	rows, err := load[trimRow]("trims.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		modelID := StableID(DomainModels, modelKey(r.Brand, r.Model))
		records = append(records, seeder.Record{
			Key: types.Key{{Name: "brand", Value: r.Brand}, {Name: "model", Value: r.Model}, {Name: "name", Value: r.Name}},
			Fields: map[string]interface{}{
				"modelId":      modelID,
				"engine":       r.Engine,
				"fuel":         r.Fuel,
				"transmission": r.Transmission,
			},
			Parents: []seeder.ParentRef{{Domain: DomainModels, Collection: collections[DomainModels], ID: modelID}},
		})
	}
	return finish(DomainTrims, records)
}

type obdRow struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`
}

// OBDCategory maps the first character of a trouble code to its system.
func OBDCategory(code string) string {
	if code == "" {
		return "unknown"
	}
	switch strings.ToUpper(code[:1]) {
	case "P":
		return "powertrain"
	case "B":
		return "body"
	case "C":
		return "chassis"
	case "U":
		return "network"
	default:
		return "unknown"
	}
}

func OBDCodes() ([]seeder.Record, error) {
	rows, err := load[obdRow]("obd_codes.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		records = append(records, seeder.Record{
			Key: types.Key{{Name: "code", Value: code}},
			Fields: map[string]interface{}{
				"description": r.Description,
				"category":    OBDCategory(code),
				"severity":    r.Severity,
				"generic":     len(code) > 1 && code[1] == '0',
			},
		})
	}
	return finish(DomainOBDCodes, records)
}

type cityRow struct {
	Name    string  `yaml:"name"`
	Region  string  `yaml:"region"`
	Country string  `yaml:"country"`
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
}

func Cities() ([]seeder.Record, error) {
	rows, err := load[cityRow]("cities.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, seeder.Record{
			Key: types.Key{{Name: "name", Value: r.Name}, {Name: "country", Value: r.Country}},
			Fields: map[string]interface{}{
				"region":   r.Region,
				"location": map[string]interface{}{"lat": r.Lat, "lng": r.Lng},
				"active":   true,
			},
		})
	}
	return finish(DomainCities, records)
}

type serviceRow struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

func Services() ([]seeder.Record, error) {
	rows, err := load[serviceRow]("services.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		key := types.Key{{Name: "name", Value: r.Name}}
		g := NewSynth(key.String())
		records = append(records, seeder.Record{
			Key: key,
			Fields: map[string]interface{}{
				"slug":            utils.Slugify(r.Name),
				"category":        r.Category,
				"description":     r.Description,
				"price":           g.Price(49, 899),
				"durationMinutes": g.DurationMinutes(),
			},
		})
	}
	return finish(DomainServices, records)
}

type paymentRow struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Logo string `yaml:"logo"`
}

func PaymentMethods() ([]seeder.Record, error) {
	rows, err := load[paymentRow]("payment_methods.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for i, r := range rows {
		rec := seeder.Record{
			Key: types.Key{{Name: "code", Value: r.Code}},
			Fields: map[string]interface{}{
				"name":      r.Name,
				"type":      r.Type,
				"enabled":   true,
				"sortOrder": i + 1,
			},
		}
		if r.Logo != "" {
			rec.Assets = map[string]string{"logo": r.Logo}
		}
		records = append(records, rec)
	}
	return finish(DomainPaymentMethods, records)
}

type partRow struct {
	Name       string `yaml:"name"`
	Brand      string `yaml:"brand"`
	PartNumber string `yaml:"part_number"`
	Category   string `yaml:"category"`
	Fits       string `yaml:"fits"`
}

func Parts() ([]seeder.Record, error) {
	rows, err := load[partRow]("parts.yaml")
	if err != nil {
		return nil, err
	}
	records := make([]seeder.Record, 0, len(rows))
	for _, r := range rows {
		key := types.Key{{Name: "name", Value: r.Name}, {Name: "brand", Value: r.Brand}, {Name: "partNumber", Value: r.PartNumber}}
		g := NewSynth(key.String())
		prefix := strings.ToUpper(utils.Slugify(r.Brand))
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		parent := brandRef(r.Fits)
		records = append(records, seeder.Record{
			Key: key,
			Fields: map[string]interface{}{
				"category":  r.Category,
				"fitsBrand": r.Fits,
				"fitsId":    parent.ID,
				"sku":       g.SKU(prefix),
				"price":     g.Price(15, 1500),
				"stock":     g.IntBetween(0, 250),
				"oem":       g.Bool(),
			},
			Parents: []seeder.ParentRef{parent},
		})
	}
	return finish(DomainParts, records)
}
