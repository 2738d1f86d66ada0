package cli

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fse-compliance/internal/domain"
)

// допустимые заголовки CSV -> каноничное имя колонки
var columnAliases = map[string]string{
	"id":                  "id",
	"fse_id":              "id",
	"instance_id":         "instance_id",
	"display_name":        "display_name",
	"registration_number": "registration_number",
	"registration":        "registration_number",
	"serial_number":       "serial_number",
	"serial":              "serial_number",
	"street_address":      "street_address",
	"city":                "city",
	"postal_code":         "postal_code",
	"latitude":            "latitude",
	"lat":                 "latitude",
	"longitude":           "longitude",
	"lon":                 "longitude",
	"lng":                 "longitude",
	"supply_from":         "supply_from",
	"supply_from_date":    "supply_from",
	"supply_to":           "supply_to",
	"supply_to_date":      "supply_to",
}

// ReadRowsFile читает строки оборудования из .csv или .json файла
func ReadRowsFile(path string) ([]domain.SupplyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(f)
	case ".csv", "":
		return ParseCSV(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q (expected .csv or .json)", filepath.Ext(path))
	}
}

// ParseCSV разбирает CSV с заголовком. Обязательны координаты и хотя бы
// одна из колонок registration_number/serial_number.
func ParseCSV(r io.Reader) ([]domain.SupplyRow, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}

	for _, k := range []string{"latitude", "longitude"} {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}
	_, hasReg := col["registration_number"]
	_, hasSerial := col["serial_number"]
	if !hasReg && !hasSerial {
		return nil, errors.New("missing required column: registration_number or serial_number")
	}

	rows := make([]domain.SupplyRow, 0, len(records)-1)
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		if isBlank(rec) {
			continue
		}

		rows = append(rows, domain.SupplyRow{
			ID:                 get("id"),
			InstanceID:         get("instance_id"),
			DisplayName:        get("display_name"),
			RegistrationNumber: get("registration_number"),
			SerialNumber:       get("serial_number"),
			StreetAddress:      get("street_address"),
			City:               get("city"),
			PostalCode:         get("postal_code"),
			Latitude:           domain.ParseFlexFloat(get("latitude")),
			Longitude:          domain.ParseFlexFloat(get("longitude")),
			SupplyFrom:         get("supply_from"),
			SupplyTo:           get("supply_to"),
		})
	}

	if len(rows) == 0 {
		return nil, errors.New("csv has no data rows")
	}
	return rows, nil
}

// ParseJSON принимает массив строк или объект {"rows": [...]}
func ParseJSON(r io.Reader) ([]domain.SupplyRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows []domain.SupplyRow
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &rows)
	} else {
		var wrapped struct {
			Rows []domain.SupplyRow `json:"rows"`
		}
		err = json.Unmarshal(data, &wrapped)
		rows = wrapped.Rows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse json input: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("json input has no rows")
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
