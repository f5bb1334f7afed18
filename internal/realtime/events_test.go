package realtime

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIdentityArgAcceptsStringsAndNumbers(t *testing.T) {
	cases := map[string]IdentityArg{
		`"d-1"`:   "d-1",
		`" d-2 "`: "d-2",
		`42`:      "42",
		`null`:    "",
	}
	for raw, want := range cases {
		var got IdentityArg
		if err := json.Unmarshal([]byte(raw), &got); err != nil {
			t.Fatalf("%s: unexpected error %v", raw, err)
		}
		if got != want {
			t.Fatalf("%s: got %q want %q", raw, got, want)
		}
	}
}

func TestEventEncodeShape(t *testing.T) {
	raw, err := Event{Name: EventDriverGPSUpdate, Data: GPSPoint{Lat: 1.0, Lng: 2.0}}.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(raw) != `{"event":"driverGPSUpdate","data":{"lat":1,"lng":2}}` {
		t.Fatalf("unexpected frame %s", raw)
	}
}

func TestPassengerGPSDecode(t *testing.T) {
	var gps PassengerGPS
	if err := json.NewDecoder(strings.NewReader(`{"driverId":"d-1","lat":-1.29,"lng":36.82}`)).Decode(&gps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gps.DriverID != "d-1" || gps.Lat != -1.29 || gps.Lng != 36.82 {
		t.Fatalf("unexpected gps %+v", gps)
	}
}
