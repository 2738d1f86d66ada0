package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fse-compliance/internal/domain"
)

func TestParseCSV(t *testing.T) {
	t.Run("aliases, BOM and blank lines", func(t *testing.T) {
		input := "\ufeffinstance_id,Registration,serial,lat,lng,supply_from,supply_to,city\n" +
			"r1,REG1,SN1,49.2827,-123.1207,2024-01-01,2024-01-31,Vancouver\n" +
			",,,,,,,\n" +
			"r2,REG1,SN1,not-a-number,-123.1207,,2024-02-01,Vancouver\n"

		rows, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "r1", rows[0].InstanceID)
		assert.Equal(t, "REG1", rows[0].RegistrationNumber)
		assert.Equal(t, "SN1", rows[0].SerialNumber)
		assert.Equal(t, domain.NewFlexFloat(49.2827), rows[0].Latitude)
		assert.Equal(t, domain.NewFlexFloat(-123.1207), rows[0].Longitude)
		assert.Equal(t, "Vancouver", rows[0].City)

		assert.False(t, rows[1].Latitude.Set)
		assert.Empty(t, rows[1].SupplyFrom)
	})

	t.Run("missing coordinates column", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("registration_number,latitude\nREG1,49\n"))
		assert.ErrorContains(t, err, "longitude")
	})

	t.Run("missing equipment identity columns", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("latitude,longitude\n49,-123\n"))
		assert.ErrorContains(t, err, "registration_number or serial_number")
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("serial_number,latitude,longitude\n"))
		assert.ErrorContains(t, err, "no data rows")
	})
}

func TestParseJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		rows, err := ParseJSON(strings.NewReader(`[{"serial_number": "SN1", "latitude": "49.5", "longitude": -123}]`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.NewFlexFloat(49.5), rows[0].Latitude)
	})

	t.Run("wrapped", func(t *testing.T) {
		rows, err := ParseJSON(strings.NewReader(`{"rows": [{"serial_number": "SN1"}, {"serial_number": "SN2"}]}`))
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseJSON(strings.NewReader(`[]`))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseJSON(strings.NewReader(`{"rows": [`))
		assert.Error(t, err)
	})
}

func TestReadRowsFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadRowsFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	path := filepath.Join(dir, "rows.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err = ReadRowsFile(path)
	assert.ErrorContains(t, err, "unsupported input format")
}
