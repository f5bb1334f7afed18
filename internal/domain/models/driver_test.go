package models

import "testing"

func TestDriverAddressable(t *testing.T) {
	cases := []struct {
		status ApprovalStatus
		online bool
		want   bool
	}{
		{DriverApproved, true, true},
		{DriverApproved, false, false},
		{DriverPending, true, false},
		{DriverRejected, true, false},
		{DriverRejected, false, false},
	}
	for _, tc := range cases {
		d := Driver{Status: tc.status, IsOnline: tc.online}
		if got := d.Addressable(); got != tc.want {
			t.Fatalf("status=%s online=%v: got %v want %v", tc.status, tc.online, got, tc.want)
		}
	}
}

func TestBookingAcceptOnlyMovesForward(t *testing.T) {
	b := Booking{Status: BookingPending}
	b.Accept()
	if b.Status != BookingAccepted {
		t.Fatalf("expected accepted, got %s", b.Status)
	}
	b.Accept()
	if b.Status != BookingAccepted {
		t.Fatalf("second accept must keep accepted, got %s", b.Status)
	}
}
