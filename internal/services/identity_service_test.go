package services

import (
	"context"
	"testing"
	"time"

	"nganya/internal/domain"
	"nganya/internal/domain/models"
	"nganya/internal/realtime"

	"golang.org/x/crypto/bcrypt"
)

func newIdentityService() (IdentityService, *memPassengers, *memDrivers, *recordingPublisher) {
	passengers := newMemPassengers()
	drivers := newMemDrivers()
	pub := &recordingPublisher{}
	svc := IdentityService{
		Passengers: passengers,
		Drivers:    drivers,
		Router:     pub,
		Tokens:     TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour},
		Cost:       bcrypt.MinCost,
	}
	return svc, passengers, drivers, pub
}

func TestRegisterAndLoginPassenger(t *testing.T) {
	svc, _, _, _ := newIdentityService()
	ctx := context.Background()

	p, err := svc.RegisterPassenger(ctx, " Achieng  Odhiambo ", "0733", " Achieng@Example.com ", "s3cret")
	if err != nil {
		t.Fatalf("RegisterPassenger returned error: %v", err)
	}
	if p.Email != "achieng@example.com" || p.Name != "Achieng Odhiambo" {
		t.Fatalf("fields not normalized: %+v", p)
	}
	if p.PasswordHash == "s3cret" || p.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	got, token, err := svc.LoginPassenger(ctx, "ACHIENG@example.com", "s3cret")
	if err != nil {
		t.Fatalf("LoginPassenger returned error: %v", err)
	}
	if got.ID != p.ID || token == "" {
		t.Fatalf("unexpected login result: %+v token=%q", got, token)
	}
	claims, err := svc.Tokens.Parse(token)
	if err != nil || claims.Subject != p.ID || claims.Role != domain.RolePassenger {
		t.Fatalf("token claims wrong: %+v err=%v", claims, err)
	}
}

func TestRegisterPassengerDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newIdentityService()
	ctx := context.Background()

	if _, err := svc.RegisterPassenger(ctx, "A", "1", "a@x.io", "pw"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.RegisterPassenger(ctx, "B", "2", "A@x.io", "pw")
	if !domain.IsAlreadyExists(err) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestRegisterPassengerRequiresCredentials(t *testing.T) {
	svc, _, _, _ := newIdentityService()

	_, err := svc.RegisterPassenger(context.Background(), "A", "1", "", "pw")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginPassengerWrongPassword(t *testing.T) {
	svc, _, _, _ := newIdentityService()
	ctx := context.Background()
	_, _ = svc.RegisterPassenger(ctx, "A", "1", "a@x.io", "pw")

	if _, _, err := svc.LoginPassenger(ctx, "a@x.io", "nope"); !domain.IsCredential(err) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if _, _, err := svc.LoginPassenger(ctx, "ghost@x.io", "pw"); !domain.IsCredential(err) {
		t.Fatalf("unknown email should also be a credential error, got %v", err)
	}
}

func TestRegisterDriverAnnouncesApplication(t *testing.T) {
	svc, _, _, pub := newIdentityService()

	d, err := svc.RegisterDriver(context.Background(), "Otieno", "0711 000 111", "pw")
	if err != nil {
		t.Fatalf("RegisterDriver returned error: %v", err)
	}
	if d.Status != models.DriverPending || d.IsOnline {
		t.Fatalf("new driver must be pending and offline: %+v", d)
	}
	sent := pub.named(realtime.EventNewDriverApplication)
	if len(sent) != 1 || sent[0].kind != "all" {
		t.Fatalf("application not announced: %+v", sent)
	}
	if payload := sent[0].ev.Data.(realtime.DriverApplicationPayload); payload.DriverID != d.ID {
		t.Fatalf("payload carries wrong driver: %+v", payload)
	}
	if len(pub.named(realtime.EventDriversOnlineList)) != 0 {
		t.Fatalf("registration must not touch the presence list")
	}
}

func TestLoginDriverRequiresApproval(t *testing.T) {
	svc, _, drivers, _ := newIdentityService()
	ctx := context.Background()
	d, _ := svc.RegisterDriver(ctx, "Otieno", "0711", "pw")

	_, _, err := svc.LoginDriver(ctx, "0711", "pw")
	if !domain.IsNotApproved(err) {
		t.Fatalf("expected not approved, got %v", err)
	}

	d = drivers.get(d.ID)
	d.Status = models.DriverApproved
	_ = drivers.Save(ctx, d)

	got, token, err := svc.LoginDriver(ctx, "0711", "pw")
	if err != nil || got.ID != d.ID || token == "" {
		t.Fatalf("approved login failed: %+v err=%v", got, err)
	}
}

func TestSubmitApplicationResetsReview(t *testing.T) {
	svc, _, drivers, pub := newIdentityService()
	ctx := context.Background()
	rejected := models.Driver{ID: "d-9", Name: "Kamau", Phone: "0799", Status: models.DriverRejected}
	_ = drivers.Create(ctx, rejected)

	got, err := svc.SubmitApplication(ctx, "d-9", models.DriverApplication{Vehicle: " KDA 001 ", Route: "Jogoo Rd", Capacity: 33})
	if err != nil {
		t.Fatalf("SubmitApplication returned error: %v", err)
	}
	if got.Status != models.DriverPending || got.Vehicle != "KDA 001" || got.Capacity != 33 {
		t.Fatalf("application not applied: %+v", got)
	}
	if len(pub.named(realtime.EventNewDriverApplication)) != 1 {
		t.Fatalf("resubmission should be announced")
	}
}

func TestFindAccount(t *testing.T) {
	svc, passengers, drivers, _ := newIdentityService()
	ctx := context.Background()
	_ = passengers.Create(ctx, models.Passenger{ID: "p-1", Name: "Achieng", Phone: "0733"})
	_ = drivers.Create(ctx, models.Driver{ID: "d-1", Name: "Otieno", Phone: "0711"})

	acc, err := svc.FindAccount(ctx, domain.RoleDriver, "d-1")
	if err != nil || acc.Name != "Otieno" || acc.Role != domain.RoleDriver {
		t.Fatalf("driver account wrong: %+v err=%v", acc, err)
	}
	if _, err := svc.FindAccount(ctx, domain.RolePassenger, "d-1"); !domain.IsNotFound(err) {
		t.Fatalf("driver id must not resolve as passenger, got %v", err)
	}
	if _, err := svc.FindAccount(ctx, domain.Role("admin"), "x"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}
