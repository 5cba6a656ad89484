package user

import (
	"net/mail"
	"testing"
	"time"

	"github.com/kymoh/moviematrix/core"
)

func newTokenConfig() *core.Config {
	return &core.Config{
		AppName:                   "MovieMatrix",
		SecretKey:                 "secret",
		DefaultFromEmail:          mail.Address{Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
}

func newTokenUser(t *testing.T) User {
	t.Helper()
	usr := User{ID: 42, Username: "jdoe", Email: "jdoe@test.cd", FirstName: "John"}
	if err := usr.SetPassword("V3ry$ecret!"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	return usr
}

func TestEncodeDecodeUID(t *testing.T) {
	usr := User{ID: 42}

	uid := EncodeUID(usr)
	if uid == "" {
		t.Fatal("EncodeUID() returned an empty uid")
	}
	id, err := DecodeUID(uid)
	if err != nil {
		t.Fatalf("DecodeUID() failed: %v", err)
	}
	if id != usr.ID {
		t.Errorf("DecodeUID() = %d; want %d", id, usr.ID)
	}

	if _, err = DecodeUID("not-base64!!"); err == nil {
		t.Error("DecodeUID() expected an error for garbage input")
	}
}

func TestMakeAndVerifyToken(t *testing.T) {
	conf := newTokenConfig()
	usr := newTokenUser(t)

	token, err := MakeToken(usr, conf)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		if err := verifyToken(usr, token, conf); err != nil {
			t.Errorf("verifyToken() failed: %v", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if err := verifyToken(usr, "", conf); err != errInvalidToken {
			t.Errorf("verifyToken() error = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		if err := verifyToken(usr, "nodash", conf); err != errInvalidToken {
			t.Errorf("verifyToken() error = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		if err := verifyToken(usr, token+"x", conf); err != errInvalidToken {
			t.Errorf("verifyToken() error = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("password change invalidates token", func(t *testing.T) {
		changed := usr
		if err := changed.SetPassword("An0ther$ecret!"); err != nil {
			t.Fatalf("SetPassword() failed: %v", err)
		}
		if err := verifyToken(changed, token, conf); err != errInvalidToken {
			t.Errorf("verifyToken() error = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("login invalidates token", func(t *testing.T) {
		loggedIn := usr
		loggedIn.LastLogin = time.Now().UTC()
		if err := verifyToken(loggedIn, token, conf); err != errInvalidToken {
			t.Errorf("verifyToken() error = %v; want %v", err, errInvalidToken)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		defer func() { NowFunc = time.Now }()
		NowFunc = func() time.Time { return time.Now().Add(-4 * 24 * time.Hour) }

		oldToken, err := MakeToken(usr, conf)
		if err != nil {
			t.Fatalf("MakeToken() failed: %v", err)
		}
		if err := verifyToken(usr, oldToken, conf); err != errTokenExpired {
			t.Errorf("verifyToken() error = %v; want %v", err, errTokenExpired)
		}
	})
}
