package services

import (
	"context"
	"fmt"
	"time"

	"nganya/internal/domain"
	"nganya/internal/domain/models"
	"nganya/internal/realtime"
	"nganya/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// IdentityService registers passengers and drivers and verifies their
// credentials. Passwords are stored as bcrypt hashes only.
type IdentityService struct {
	Passengers PassengerStore
	Drivers    DriverStore
	Router     Publisher
	Tokens     TokenIssuer
	Cost       int
	Now        func() time.Time
	NewID      func() string
}

func (s IdentityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s IdentityService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return domain.NewID()
}

func (s IdentityService) hash(secret string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyCredential compares a secret against a stored hash.
func VerifyCredential(hash, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func (s IdentityService) RegisterPassenger(ctx context.Context, name, phone, email, password string) (models.Passenger, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return models.Passenger{}, domain.ValidationError{Msg: "email and password required"}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "identity", "register_passenger", "email="+email)

	if _, err := s.Passengers.FindByEmail(ctx, email); err == nil {
		return models.Passenger{}, domain.AlreadyExistsError{Resource: "passenger", Msg: "Email already registered"}
	} else if !domain.IsNotFound(err) {
		return models.Passenger{}, storeErr(err, "Error registering passenger")
	}

	hash, err := s.hash(password)
	if err != nil {
		return models.Passenger{}, domain.PersistenceError{Msg: "Error registering passenger", Err: err}
	}
	p := models.Passenger{
		ID:           s.newID(),
		Name:         utils.NormalizeSpace(name),
		Phone:        utils.NormalizePhone(phone),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.Passengers.Create(ctx, p); err != nil {
		return models.Passenger{}, storeErr(err, "Error registering passenger")
	}
	return p, nil
}

// LoginPassenger returns the passenger and a signed token.
func (s IdentityService) LoginPassenger(ctx context.Context, email, password string) (models.Passenger, string, error) {
	p, err := s.Passengers.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Passenger{}, "", domain.CredentialError{}
		}
		return models.Passenger{}, "", storeErr(err, "Login failed")
	}
	if !VerifyCredential(p.PasswordHash, password) {
		return models.Passenger{}, "", domain.CredentialError{}
	}
	token, err := s.Tokens.Issue(domain.RolePassenger, p.ID)
	if err != nil {
		return models.Passenger{}, "", domain.PersistenceError{Msg: "Login failed", Err: err}
	}
	return p, token, nil
}

// RegisterDriver creates a pending driver and announces the application.
func (s IdentityService) RegisterDriver(ctx context.Context, name, phone, password string) (models.Driver, error) {
	phone = utils.NormalizePhone(phone)
	if phone == "" || password == "" {
		return models.Driver{}, domain.ValidationError{Msg: "phone and password required"}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "identity", "register_driver", "phone="+phone)

	if _, err := s.Drivers.FindByPhone(ctx, phone); err == nil {
		return models.Driver{}, domain.AlreadyExistsError{Resource: "driver", Msg: "Phone already registered"}
	} else if !domain.IsNotFound(err) {
		return models.Driver{}, storeErr(err, "Error registering driver")
	}

	hash, err := s.hash(password)
	if err != nil {
		return models.Driver{}, domain.PersistenceError{Msg: "Error registering driver", Err: err}
	}
	now := s.now()
	d := models.Driver{
		ID:           s.newID(),
		Name:         utils.NormalizeSpace(name),
		Phone:        phone,
		PasswordHash: hash,
		Status:       models.DriverPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Drivers.Create(ctx, d); err != nil {
		return models.Driver{}, storeErr(err, "Error registering driver")
	}
	s.announceApplication(d)
	return d, nil
}

// LoginDriver only admits approved drivers.
func (s IdentityService) LoginDriver(ctx context.Context, phone, password string) (models.Driver, string, error) {
	d, err := s.Drivers.FindByPhone(ctx, utils.NormalizePhone(phone))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Driver{}, "", domain.CredentialError{}
		}
		return models.Driver{}, "", storeErr(err, "Login failed")
	}
	if !VerifyCredential(d.PasswordHash, password) {
		return models.Driver{}, "", domain.CredentialError{}
	}
	if d.Status != models.DriverApproved {
		return models.Driver{}, "", domain.NotApprovedError{Status: string(d.Status)}
	}
	token, err := s.Tokens.Issue(domain.RoleDriver, d.ID)
	if err != nil {
		return models.Driver{}, "", domain.PersistenceError{Msg: "Login failed", Err: err}
	}
	return d, token, nil
}

// SubmitApplication records vehicle details and puts the driver back into review.
func (s IdentityService) SubmitApplication(ctx context.Context, driverID string, app models.DriverApplication) (models.Driver, error) {
	ctx = context.WithoutCancel(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "identity", "application", fmt.Sprintf("driver_id=%s capacity=%d", driverID, app.Capacity))

	d, err := s.Drivers.FindByID(ctx, driverID)
	if err != nil {
		return models.Driver{}, storeErr(err, "Failed to submit application")
	}
	d.Vehicle = utils.NormalizeSpace(app.Vehicle)
	d.Route = utils.NormalizeSpace(app.Route)
	d.Capacity = app.Capacity
	d.Status = models.DriverPending
	d.UpdatedAt = s.now()
	if err := s.Drivers.Save(ctx, d); err != nil {
		return models.Driver{}, storeErr(err, "Failed to submit application")
	}
	s.announceApplication(d)
	return d, nil
}

func (s IdentityService) announceApplication(d models.Driver) {
	if s.Router == nil {
		return
	}
	s.Router.Broadcast(realtime.Event{
		Name: realtime.EventNewDriverApplication,
		Data: realtime.DriverApplicationPayload{DriverID: d.ID, Name: d.Name, Phone: d.Phone},
	})
}

func (s IdentityService) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	drivers, err := s.Drivers.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, "Failed to fetch drivers")
	}
	return drivers, nil
}

// Account is the role-independent view of a registered identity.
type Account struct {
	ID    string      `json:"_id"`
	Role  domain.Role `json:"role"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
}

// FindAccount resolves an identity id for the given role.
func (s IdentityService) FindAccount(ctx context.Context, role domain.Role, id string) (Account, error) {
	switch role {
	case domain.RolePassenger:
		p, err := s.Passengers.FindByID(ctx, id)
		if err != nil {
			return Account{}, storeErr(err, "Failed to fetch passenger")
		}
		return Account{ID: p.ID, Role: role, Name: p.Name, Phone: p.Phone}, nil
	case domain.RoleDriver:
		d, err := s.Drivers.FindByID(ctx, id)
		if err != nil {
			return Account{}, storeErr(err, "Failed to fetch driver")
		}
		return Account{ID: d.ID, Role: role, Name: d.Name, Phone: d.Phone}, nil
	default:
		return Account{}, domain.ValidationError{Field: "role", Msg: "unknown role"}
	}
}
