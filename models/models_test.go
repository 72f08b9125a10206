package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureList(t *testing.T) {
	t.Run("ValueEncodesJSONArray", func(t *testing.T) {
		v, err := FeatureList{"HD Streaming", "GPS Tracking"}.Value()
		require.NoError(t, err)
		assert.Equal(t, `["HD Streaming","GPS Tracking"]`, v)
	})

	t.Run("EmptyValueIsEmptyArray", func(t *testing.T) {
		v, err := FeatureList(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	tests := []struct {
		name  string
		input any
		want  FeatureList
	}{
		{"Null", nil, FeatureList{}},
		{"EmptyString", "", FeatureList{}},
		{"JSONArray", `["4K Streaming","Mobile Hotspot"]`, FeatureList{"4K Streaming", "Mobile Hotspot"}},
		{"JSONBytes", []byte(`["Unlimited Data"]`), FeatureList{"Unlimited Data"}},
		{"EmptyJSONArray", "[]", FeatureList{}},
		{"LegacyCSV", "Unlimited Data, High-Speed 5G", FeatureList{"Unlimited Data", "High-Speed 5G"}},
		{"LegacyCSVSingle", "GPS Tracking", FeatureList{"GPS Tracking"}},
		{"LegacyCSVBlankParts", " a ,, b ", FeatureList{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run("Scan"+tt.name, func(t *testing.T) {
			var f FeatureList
			require.NoError(t, f.Scan(tt.input))
			assert.Equal(t, tt.want, f)
		})
	}

	t.Run("ScanRejectsOtherTypes", func(t *testing.T) {
		var f FeatureList
		assert.Error(t, f.Scan(42))
	})

	t.Run("OrderSurvivesStorage", func(t *testing.T) {
		in := FeatureList{"Mobile Hotspot", "100GB Premium Data", "4K Streaming"}
		v, err := in.Value()
		require.NoError(t, err)

		var out FeatureList
		require.NoError(t, out.Scan(v))
		assert.Equal(t, in, out)
	})

	t.Run("NilMarshalsAsArray", func(t *testing.T) {
		b, err := json.Marshal(Line{MDN: "5551234567"})
		require.NoError(t, err)
		assert.Contains(t, string(b), `"features":[]`)
	})
}

func TestPlanPrice(t *testing.T) {
	plans := DefaultPlans()
	require.Len(t, plans, 3)

	ultimate := plans[0]
	assert.Equal(t, "Unlimited Ultimate", ultimate.Name)

	tests := []struct {
		lines int
		want  float64
	}{
		{0, 100},
		{1, 100},
		{2, 90},
		{3, 75},
		{4, 65},
		{9, 65},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ultimate.Price(tt.lines), "lines=%d", tt.lines)
	}

	assert.Equal(t, 55.0, plans[1].Price(5))
	assert.Equal(t, 65.0, plans[2].Price(2))
}

func TestCatalog(t *testing.T) {
	offers := DefaultPlanOffers()
	require.NotEmpty(t, offers)

	var labels []string
	for _, o := range offers {
		labels = append(labels, o.Label)
	}
	assert.Contains(t, labels, DefaultPlanLabel)

	features := DefaultFeatures()
	assert.Len(t, features, 10)
	assert.Equal(t, "International Roaming", features[5].Name)
	assert.Equal(t, "$10/day", features[5].Price)
}

func TestDeviceManufacturer(t *testing.T) {
	label := func(s string) Device { return Device{Device: &s, IMEI: "123456789012345"} }

	assert.Equal(t, "Apple iPhone", label("iPhone 15 Pro").Manufacturer())
	assert.Equal(t, "Apple iPad", label("iPad Air").Manufacturer())
	assert.Equal(t, "Apple Watch", label("Apple Watch Ultra").Manufacturer())
	assert.Equal(t, "Samsung", label("Galaxy S24").Manufacturer())
	assert.Equal(t, "Samsung", label("SAMSUNG Flip").Manufacturer())
	assert.Equal(t, "Google Pixel", label("Pixel 9").Manufacturer())
	assert.Equal(t, "Other", label("Verizon 5G Router").Manufacturer())
	assert.Equal(t, "Other", Device{IMEI: "1"}.Manufacturer())

	d := label("Pixel 9")
	assert.True(t, d.Matches("pixel"))
	assert.True(t, d.Matches("6789"))
	assert.False(t, d.Matches("iphone"))
	assert.True(t, d.Matches(""))
}

func TestQueueItemWaitTime(t *testing.T) {
	added := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	item := QueueItem{AddedAt: added}

	assert.Equal(t, 0, item.WaitMinutes(added))
	assert.Equal(t, 4, item.WaitMinutes(added.Add(4*time.Minute+59*time.Second)))
	assert.Equal(t, time.Duration(0), item.WaitTime(added.Add(-time.Minute)))
}

func TestDefaultDevicesForSale(t *testing.T) {
	devices := DefaultDevicesForSale()
	require.Len(t, devices, 5)
	for _, d := range devices {
		require.NotNil(t, d.ImageURL)
		assert.Equal(t, d.Device, *d.ImageURL)
		assert.True(t, *d.IsAvailable)
	}
}
