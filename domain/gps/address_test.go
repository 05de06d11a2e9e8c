package gps

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

var addressData = []struct {
	JSON   string
	STRUCT Address
}{
	{JSON: `{"country":"France","ciso":"fr","city":"Nice","zip":"06000","id":"fr_06000_nice"}`,
		STRUCT: Address{
			AddressFields: AddressFields{Country: Country{Country: "France", ID: "fr"}, City: "Nice", Zip: "06000"},
			ID:            "fr_06000_nice",
		},
	},
	{JSON: `{"country":"Austria","ciso":"at","city":"Wien","zip":"1010","name":"Schottenviertel, Wien, 1010, Austria","id":"at_1010_wien","boundingbox":[16.3,48.2,16.4,48.3]}`,
		STRUCT: Address{
			AddressFields: AddressFields{Country: Country{Country: "Austria", ID: "at"}, City: "Wien", Zip: "1010", DisplayName: "Schottenviertel, Wien, 1010, Austria"},
			ID:            "at_1010_wien",
			BoundingBox:   &Rect{16.3, 48.2, 16.4, 48.3},
		},
	},
}

func TestUnmarshalAddress(t *testing.T) {
	for i, d := range addressData {
		var a Address
		if err := json.Unmarshal([]byte(d.JSON), &a); err != nil {
			t.Fatalf("#%d: error while unmarshalling JSON: %s", i, err)
		}
		assert.Equal(t, d.STRUCT, a)
	}
}

func TestMarshalJSONAddress(t *testing.T) {
	for i, d := range addressData {
		bin, err := json.Marshal(&d.STRUCT)
		if err != nil {
			t.Fatalf("#%d: error while marshalling to JSON: %s", i, err)
		}
		assert.JSONEq(t, d.JSON, string(bin))
	}
}

func TestAddressString(t *testing.T) {
	a := AsAddress("Austria", "AT", "Wien", "1010")
	assert.Equal(t, "Wien, Austria", a.String())
	assert.Equal(t, PlaceID("at_1010_wien"), a.ID)
	a.DisplayName = "Innere Stadt, Wien"
	assert.Equal(t, "Innere Stadt, Wien", a.String())
}

func TestValidBoundingBox(t *testing.T) {
	a := AsAddress("Austria", "AT", "Wien", "1010")
	assert.False(t, a.HasValidBoundingBox())
	a.BoundingBox = &Rect{16.3, 48.2, 16.4, 48.3}
	assert.True(t, a.HasValidBoundingBox())
	a.BoundingBox = &Rect{16.3, 48.2, 16.3, 48.3}
	assert.False(t, a.HasValidBoundingBox(), "empty box")
}
