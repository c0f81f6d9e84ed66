package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/config"
	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/hash"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/jwt"
	"github.com/wiratama/otplogin/internal/pkg/passcrypt"
	"github.com/wiratama/otplogin/internal/pkg/validator"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type staticID string

func (s staticID) Generate() string { return string(s) }

type fakeDB struct {
	user *entity.User
	err  error
}

func (f *fakeDB) GetUserByIdentifier(_ context.Context, _ string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.user, nil
}

type fakeSessions struct {
	store   map[string]entity.FlowSession
	saveErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{store: make(map[string]entity.FlowSession)}
}

func (f *fakeSessions) Get(_ context.Context, id string) (*entity.FlowSession, error) {
	sess, ok := f.store[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	cp := sess

	return &cp, nil
}

func (f *fakeSessions) Save(_ context.Context, id string, sess entity.FlowSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.store[id] = sess

	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	delete(f.store, id)

	return nil
}

type fakeGuard struct {
	locked   bool
	failures int
	resets   int
}

func (f *fakeGuard) Locked(_ context.Context, _ int64) (bool, error) { return f.locked, nil }

func (f *fakeGuard) RecordFailure(_ context.Context, _ int64) error {
	f.failures++

	return nil
}

func (f *fakeGuard) Reset(_ context.Context, _ int64) error {
	f.resets++

	return nil
}

type fakeDeliverer struct {
	channel string
	ok      bool
	calls   int
	codes   []string
}

func (f *fakeDeliverer) Deliver(
	_ context.Context, _ entity.User, _ string, code string, _ time.Duration,
) (string, bool) {
	f.calls++
	f.codes = append(f.codes, code)

	return f.channel, f.ok
}

type fakeMessaging struct {
	dispatched []LoginOTPDispatchedEvent
	succeeded  []LoginSucceededEvent
	err        error
}

func (f *fakeMessaging) PublishLoginOTPDispatched(_ context.Context, msg LoginOTPDispatchedEvent) error {
	f.dispatched = append(f.dispatched, msg)

	return f.err
}

func (f *fakeMessaging) PublishLoginSucceeded(_ context.Context, msg LoginSucceededEvent) error {
	f.succeeded = append(f.succeeded, msg)

	return f.err
}

type testDeps struct {
	db        *fakeDB
	sessions  *fakeSessions
	guard     *fakeGuard
	deliverer *fakeDeliverer
	mq        *fakeMessaging
	clock     *fakeClock
	bcrypt    hash.Hash
	uc        *Usecase
}

func newTestUsecase(t *testing.T) *testDeps {
	t.Helper()

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(
		"modules:\n  login:\n    otp_digits: 6\n    otp_ttl_seconds: 300\n",
	))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	clk := &fakeClock{now: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:     bytes.Repeat([]byte("k"), 64),
		Issuer:     "otplogin-test",
		Audiences:  []string{"otplogin"},
		TTLMinutes: 5 * time.Minute,
		Clock:      clk,
		UUID:       staticID("jti-1"),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	d := &testDeps{
		db:        &fakeDB{},
		sessions:  newFakeSessions(),
		guard:     &fakeGuard{},
		deliverer: &fakeDeliverer{channel: "sms", ok: true},
		mq:        &fakeMessaging{},
		clock:     clk,
		bcrypt:    hash.NewBcrypt(4, ""),
	}

	d.uc = New(Dependency{
		RepoDB:        d.db,
		Sessions:      d.sessions,
		Guard:         d.guard,
		Deliverer:     d.deliverer,
		RepoMessaging: d.mq,
		Validator:     val,
		Config:        cfg,
		Bcrypt:        d.bcrypt,
		Clock:         clk,
		JWT:           signer,
		Instrument:    instrument.NewNoop(),
	})

	return d
}

func (d *testDeps) seedUser(t *testing.T, password string) *entity.User {
	t.Helper()

	hashed, err := d.bcrypt.Hash(password)
	if err != nil {
		t.Fatalf("bcrypt.Hash() error = %v", err)
	}

	d.db.user = &entity.User{
		ID:       42,
		Username: "asha",
		Email:    "asha@example.org",
		Phone:    "9876543210",
		Password: string(hashed),
		Enabled:  true,
	}

	return d.db.user
}

func (d *testDeps) seedSession(id string, sess entity.FlowSession) {
	d.sessions.store[id] = sess
}

func TestUsecase_Authenticate_Render(t *testing.T) {
	t.Run("MintsSecretKeyOnFirstRender", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)

		// Act
		out, err := d.uc.Authenticate(context.Background(), AuthenticateInput{SessionID: "s1"})

		// Assert
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if out.Page != PageLogin {
			t.Errorf("Page = %q, want %q", out.Page, PageLogin)
		}
		if len(out.SecretKey) != passcrypt.KeyLen {
			t.Errorf("len(SecretKey) = %d, want %d", len(out.SecretKey), passcrypt.KeyLen)
		}
	})

	t.Run("SecretKeyIsStableAcrossRenders", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		first, err := d.uc.Authenticate(context.Background(), AuthenticateInput{SessionID: "s1"})
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		// Act
		second, err := d.uc.Authenticate(context.Background(), AuthenticateInput{SessionID: "s1"})

		// Assert
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if second.SecretKey != first.SecretKey {
			t.Errorf("SecretKey changed across renders: %q vs %q", first.SecretKey, second.SecretKey)
		}
	})

	t.Run("UnknownFlagFailsValidation", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)

		// Act
		_, err := d.uc.Authenticate(context.Background(), AuthenticateInput{SessionID: "s1", FlagPage: "bogus"})

		// Assert
		if err == nil {
			t.Fatal("Authenticate() error = nil, want validation error")
		}
	})

	t.Run("MissingSessionIDFailsValidation", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)

		// Act
		_, err := d.uc.Authenticate(context.Background(), AuthenticateInput{})

		// Assert
		if err == nil {
			t.Fatal("Authenticate() error = nil, want validation error")
		}
	})
}

func TestUsecase_PasswordLogin(t *testing.T) {
	encrypt := func(t *testing.T, plaintext, key string) (string, string) {
		t.Helper()

		ct, iv, err := passcrypt.Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}

		return ct, iv
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		user := d.seedUser(t, "s3cret")
		key := "0123456789abcdef"
		d.seedSession("s1", entity.FlowSession{SecretKey: key})
		ct, iv := encrypt(t, "s3cret", key)

		// Act
		out, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID:   "s1",
			Username:    " asha ",
			Password:    ct,
			IV:          iv,
			RememberMe:  "on",
			RedirectURI: "https://app.example.org/done",
		})

		// Assert
		if err != nil {
			t.Fatalf("PasswordLogin() error = %v", err)
		}
		if out.Page != PageSuccess {
			t.Errorf("Page = %q, want %q", out.Page, PageSuccess)
		}
		if out.HandoffToken == "" {
			t.Error("HandoffToken is empty")
		}
		if out.RedirectURI != "https://app.example.org/done" {
			t.Errorf("RedirectURI = %q", out.RedirectURI)
		}
		if d.guard.resets != 1 {
			t.Errorf("guard resets = %d, want 1", d.guard.resets)
		}
		sess := d.sessions.store["s1"]
		if !sess.RememberMe {
			t.Error("RememberMe not persisted")
		}
		if sess.AttemptedIdentifier != "asha" {
			t.Errorf("AttemptedIdentifier = %q, want trimmed username", sess.AttemptedIdentifier)
		}
		if len(d.mq.succeeded) != 1 || d.mq.succeeded[0].UserID != user.ID {
			t.Errorf("succeeded events = %+v", d.mq.succeeded)
		}
	})

	t.Run("WrongPasswordIsGenericAndCounted", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		key := "0123456789abcdef"
		d.seedSession("s1", entity.FlowSession{SecretKey: key})
		ct, iv := encrypt(t, "not-it", key)

		// Act
		_, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID: "s1", Username: "asha", Password: ct, IV: iv,
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("PasswordLogin() error = %v, want unauthorized", err)
		}
		if ge.Msg() != msgInvalidCredentials {
			t.Errorf("Msg = %q, want generic credentials message", ge.Msg())
		}
		if d.guard.failures != 1 {
			t.Errorf("guard failures = %d, want 1", d.guard.failures)
		}
	})

	t.Run("DecryptFailureIsGeneric", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.seedSession("s1", entity.FlowSession{SecretKey: "0123456789abcdef"})

		// Act
		_, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID: "s1", Username: "asha", Password: "!!not-base64!!", IV: "also-bad",
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("PasswordLogin() error = %v, want unauthorized", err)
		}
		if ge.Msg() != msgInvalidCredentials {
			t.Errorf("Msg = %q, want generic credentials message", ge.Msg())
		}
	})

	t.Run("DuplicateUserIsConflict", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.db.err = goerror.ErrConflict
		d.seedSession("s1", entity.FlowSession{SecretKey: "0123456789abcdef"})

		// Act
		_, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID: "s1", Username: "asha@example.org",
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeConflict {
			t.Fatalf("PasswordLogin() error = %v, want conflict", err)
		}
		if ge.Msg() == msgInvalidCredentials {
			t.Error("conflict must carry a distinct message")
		}
	})

	t.Run("LockedOutIsGeneric", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.guard.locked = true
		key := "0123456789abcdef"
		d.seedSession("s1", entity.FlowSession{SecretKey: key})
		ct, iv := encrypt(t, "s3cret", key)

		// Act
		_, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID: "s1", Username: "asha", Password: ct, IV: iv,
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("PasswordLogin() error = %v, want unauthorized", err)
		}
	})

	t.Run("DisabledUserIsGeneric", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.db.user.Enabled = false
		key := "0123456789abcdef"
		d.seedSession("s1", entity.FlowSession{SecretKey: key})
		ct, iv := encrypt(t, "s3cret", key)

		// Act
		_, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID: "s1", Username: "asha", Password: ct, IV: iv,
		})

		// Assert
		var ge *goerror.Error
		if !errors.As(err, &ge) || ge.Code() != goerror.CodeUnauthorized {
			t.Fatalf("PasswordLogin() error = %v, want unauthorized", err)
		}
		if ge.Msg() != msgInvalidCredentials {
			t.Errorf("Msg = %q, want generic credentials message", ge.Msg())
		}
	})

	t.Run("ExpiredSessionRendersLoginAgain", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")

		// Act
		out, err := d.uc.PasswordLogin(context.Background(), AuthenticateInput{
			SessionID: "gone", Username: "asha",
		})

		// Assert
		if err != nil {
			t.Fatalf("PasswordLogin() error = %v", err)
		}
		if out.Page != PageLogin || out.Message != msgSessionExpired {
			t.Errorf("out = %+v, want login page with session expired message", out)
		}
		if len(out.SecretKey) != passcrypt.KeyLen {
			t.Errorf("len(SecretKey) = %d, want %d", len(out.SecretKey), passcrypt.KeyLen)
		}
	})
}

func TestUsecase_SendOTP(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")

		// Act
		out, err := d.uc.SendOTP(context.Background(), AuthenticateInput{
			SessionID:     "s1",
			EmailOrMobile: "9876543210",
			RedirectURI:   "https://app.example.org/done",
		})

		// Assert
		if err != nil {
			t.Fatalf("SendOTP() error = %v", err)
		}
		if out.Page != PageOTP {
			t.Errorf("Page = %q, want %q", out.Page, PageOTP)
		}
		sess := d.sessions.store["s1"]
		if sess.Pending == nil || len(sess.Pending.Code) != 6 {
			t.Fatalf("Pending = %+v, want 6 digit code", sess.Pending)
		}
		wantExpiry := d.clock.now.Add(5 * time.Minute).UnixMilli()
		if sess.Pending.ExpiresAt != wantExpiry {
			t.Errorf("ExpiresAt = %d, want %d", sess.Pending.ExpiresAt, wantExpiry)
		}
		if sess.AttemptedIdentifier != "9876543210" {
			t.Errorf("AttemptedIdentifier = %q", sess.AttemptedIdentifier)
		}
		if d.deliverer.calls != 1 {
			t.Errorf("deliverer calls = %d, want 1", d.deliverer.calls)
		}
		if len(d.mq.dispatched) != 1 || d.mq.dispatched[0].Resend {
			t.Errorf("dispatched events = %+v", d.mq.dispatched)
		}
	})

	t.Run("DeliveryFailureShowsErrorPage", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.deliverer.ok = false

		// Act
		out, err := d.uc.SendOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", EmailOrMobile: "9876543210",
		})

		// Assert
		if err != nil {
			t.Fatalf("SendOTP() error = %v", err)
		}
		if out.Page != PageError || out.Message != msgDeliveryFailed {
			t.Errorf("out = %+v, want error page with delivery failure message", out)
		}
		if len(d.mq.dispatched) != 0 {
			t.Errorf("dispatched events = %d, want 0", len(d.mq.dispatched))
		}
	})

	t.Run("UnknownUserShowsErrorPage", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.db.err = goerror.ErrNotFound

		// Act
		out, err := d.uc.SendOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", EmailOrMobile: "9876543210",
		})

		// Assert
		if err != nil {
			t.Fatalf("SendOTP() error = %v", err)
		}
		if out.Page != PageError {
			t.Errorf("Page = %q, want %q", out.Page, PageError)
		}
		if d.deliverer.calls != 0 {
			t.Errorf("deliverer calls = %d, want 0", d.deliverer.calls)
		}
	})

	t.Run("EventPublishFailureDoesNotFailFlow", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.mq.err = errors.New("broker down")

		// Act
		out, err := d.uc.SendOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", EmailOrMobile: "9876543210",
		})

		// Assert
		if err != nil {
			t.Fatalf("SendOTP() error = %v", err)
		}
		if out.Page != PageOTP {
			t.Errorf("Page = %q, want %q", out.Page, PageOTP)
		}
	})
}

func TestUsecase_ResendOTP(t *testing.T) {
	t.Run("ReplacesPendingIssuance", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.seedSession("s1", entity.FlowSession{
			SecretKey:           "0123456789abcdef",
			AttemptedIdentifier: "9876543210",
			Pending:             &entity.PendingOTP{Code: "111111", ExpiresAt: d.clock.now.Add(time.Minute).UnixMilli()},
		})

		// Act
		out, err := d.uc.ResendOTP(context.Background(), AuthenticateInput{SessionID: "s1"})

		// Assert
		if err != nil {
			t.Fatalf("ResendOTP() error = %v", err)
		}
		if out.Page != PageOTP {
			t.Errorf("Page = %q, want %q", out.Page, PageOTP)
		}
		sess := d.sessions.store["s1"]
		if sess.Pending == nil || sess.Pending.Code == "111111" {
			t.Errorf("Pending = %+v, want replaced issuance", sess.Pending)
		}
		if len(d.mq.dispatched) != 1 || !d.mq.dispatched[0].Resend {
			t.Errorf("dispatched events = %+v, want resend flag", d.mq.dispatched)
		}
	})

	t.Run("NoPriorIdentifierFailsCleanly", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")

		// Act
		out, err := d.uc.ResendOTP(context.Background(), AuthenticateInput{SessionID: "s1"})

		// Assert
		if err != nil {
			t.Fatalf("ResendOTP() error = %v", err)
		}
		if out.Page != PageLogin || out.Message != msgSessionExpired {
			t.Errorf("out = %+v, want login page with session expired message", out)
		}
		if d.deliverer.calls != 0 {
			t.Errorf("deliverer calls = %d, want 0", d.deliverer.calls)
		}
	})
}

func TestUsecase_VerifyOTP(t *testing.T) {
	arrange := func(t *testing.T, code string, expiresAt int64) *testDeps {
		t.Helper()

		d := newTestUsecase(t)
		d.seedUser(t, "s3cret")
		d.seedSession("s1", entity.FlowSession{
			SecretKey:           "0123456789abcdef",
			AttemptedIdentifier: "asha@example.org",
			RedirectURI:         "https://app.example.org/done",
			Pending:             &entity.PendingOTP{Code: code, ExpiresAt: expiresAt},
		})

		return d
	}

	t.Run("ValidCodeFinalizesFlow", func(t *testing.T) {
		// Arrange
		d := arrange(t, "123456", time.Date(2024, 3, 15, 10, 35, 0, 0, time.UTC).UnixMilli())

		// Act
		out, err := d.uc.VerifyOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", OTPAnswer: "123456",
		})

		// Assert
		if err != nil {
			t.Fatalf("VerifyOTP() error = %v", err)
		}
		if out.Page != PageSuccess {
			t.Errorf("Page = %q, want %q", out.Page, PageSuccess)
		}
		if out.HandoffToken == "" {
			t.Error("HandoffToken is empty")
		}
		if out.RedirectURI != "https://app.example.org/done" {
			t.Errorf("RedirectURI = %q", out.RedirectURI)
		}
		if d.sessions.store["s1"].Pending != nil {
			t.Error("Pending not cleared after successful verification")
		}
		if len(d.mq.succeeded) != 1 || d.mq.succeeded[0].Method != "otp" {
			t.Errorf("succeeded events = %+v", d.mq.succeeded)
		}
	})

	t.Run("ExpiredCodeAsksForResend", func(t *testing.T) {
		// Arrange
		d := arrange(t, "123456", time.Date(2024, 3, 15, 10, 29, 0, 0, time.UTC).UnixMilli())

		// Act
		out, err := d.uc.VerifyOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", OTPAnswer: "123456",
		})

		// Assert
		if err != nil {
			t.Fatalf("VerifyOTP() error = %v", err)
		}
		if out.Page != PageOTP || out.Message != msgOTPExpired {
			t.Errorf("out = %+v, want otp page with expiry message", out)
		}
		if d.sessions.store["s1"].Pending == nil {
			t.Error("Pending cleared on expired code")
		}
	})

	t.Run("WrongCodeStaysOnOTPPage", func(t *testing.T) {
		// Arrange
		d := arrange(t, "123456", time.Date(2024, 3, 15, 10, 35, 0, 0, time.UTC).UnixMilli())

		// Act
		out, err := d.uc.VerifyOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", OTPAnswer: "654321",
		})

		// Assert
		if err != nil {
			t.Fatalf("VerifyOTP() error = %v", err)
		}
		if out.Page != PageOTP || out.Message != msgOTPInvalid {
			t.Errorf("out = %+v, want otp page with invalid message", out)
		}
	})

	t.Run("NoPendingCodeRendersLoginAgain", func(t *testing.T) {
		// Arrange
		d := newTestUsecase(t)

		// Act
		out, err := d.uc.VerifyOTP(context.Background(), AuthenticateInput{
			SessionID: "s1", OTPAnswer: "123456",
		})

		// Assert
		if err != nil {
			t.Fatalf("VerifyOTP() error = %v", err)
		}
		if out.Page != PageLogin || out.Message != msgSessionExpired {
			t.Errorf("out = %+v, want login page with session expired message", out)
		}
	})
}
