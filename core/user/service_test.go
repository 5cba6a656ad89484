package user_test

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/user"
	appfs "github.com/kymoh/moviematrix/fs"
	emailsvc "github.com/kymoh/moviematrix/services/email"
	"github.com/kymoh/moviematrix/services/logger"
	dummydb "github.com/kymoh/moviematrix/storage/database/dummy"
	"github.com/kymoh/moviematrix/tests"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(appfs.FS, testutil.NewConfig(), logger.NewTestLogger())
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (user.Service, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	conf := testutil.NewConfig()
	repo := dummydb.NewUserRepository(db)
	return user.NewService(repo, emailsvc.NewConsoleServiceMock(conf), conf), repo
}

func TestServiceCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	emailsvc.ClearSentMessages()

	usr, err := svc.Create(ctx, user.NewUser{
		Username:  "jdoe",
		Email:     "jdoe@test.cd",
		FirstName: "John",
		LastName:  "Doe",
		Age:       "30",
		Password:  "V3ry$ecret!",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if usr.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if usr.FullName() != "John Doe" {
		t.Errorf("FullName() = %q; want %q", usr.FullName(), "John Doe")
	}
	if !usr.Age.Valid || usr.Age.Int != 30 {
		t.Errorf("Age = %v; want 30", usr.Age)
	}
	if err := usr.CheckPassword("V3ry$ecret!"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	msg, ok := emailsvc.LastSentMessage()
	if !ok {
		t.Fatal("expected a welcome email to be sent")
	}
	if msg.TemplateName != "welcome" {
		t.Errorf("TemplateName = %q; want %q", msg.TemplateName, "welcome")
	}
	if len(msg.To) != 1 || msg.To[0].Address != usr.Email {
		t.Errorf("To = %v; want %s", msg.To, usr.Email)
	}
	if msg.TextContent == "" {
		t.Error("welcome email has no text content")
	}
}

func TestServiceCheckUniqueness(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "jdoe", "jdoe@test.cd", "John", "")

	tests := []struct {
		name      string
		uname     string
		email     string
		exclUsers []user.User
		wantField string
	}{
		{name: "available", uname: "janedoe", email: "janedoe@test.cd"},
		{name: "username taken", uname: "jdoe", email: "janedoe@test.cd", wantField: "username"},
		{name: "email taken", uname: "janedoe", email: "jdoe@test.cd", wantField: "email"},
		{name: "self excluded", uname: "jdoe", email: "jdoe@test.cd", exclUsers: []user.User{usr}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckUniqueness(ctx, tt.uname, tt.email, tt.exclUsers...)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("CheckUniqueness() failed: %v", err)
				}
				return
			}
			vErr := &core.ValidationError{}
			if !errors.As(err, &vErr) {
				t.Fatalf("CheckUniqueness() error = %v; want a validation error", err)
			}
			if len(vErr.Fields) != 1 || vErr.Fields[0].Field != tt.wantField {
				t.Errorf("Fields = %v; want field %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestServiceUpdate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "jdoe", "jdoe@test.cd", "John", "")
	usr.LastName.SetValid("Doe")
	if _, err := repo.UpdateUser(ctx, usr); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}

	updated, err := svc.Update(ctx, usr.ID, user.UpdateUser{
		Username:  "johnny",
		Email:     "johnny@test.cd",
		FirstName: "Johnny",
		LastName:  "", // blank clears the stored value
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Username != "johnny" || updated.Email != "johnny@test.cd" {
		t.Errorf("Update() = %s/%s; want johnny/johnny@test.cd", updated.Username, updated.Email)
	}
	if updated.LastName.Valid {
		t.Errorf("LastName = %v; want cleared", updated.LastName)
	}
	if !updated.UpdatedAt.After(usr.UpdatedAt) {
		t.Error("UpdatedAt was not bumped")
	}
}

func TestServiceChangePassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, usr, user.ChangePassword{Current: "nope", New: "An0ther$ecret!"})
		vErr := &core.ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("ChangePassword() error = %v; want a validation error", err)
		}
	})

	t.Run("ok", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, usr, user.ChangePassword{Current: "V3ry$ecret!", New: "An0ther$ecret!"}); err != nil {
			t.Fatalf("ChangePassword() failed: %v", err)
		}
		fresh, err := repo.GetUserByID(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if err := fresh.CheckPassword("An0ther$ecret!"); err != nil {
			t.Errorf("CheckPassword() failed after change: %v", err)
		}
	})
}

func TestServicePasswordReset(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	conf := testutil.NewConfig()

	usr := testutil.CreateUser(t, repo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	t.Run("request sends mail", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		if err := svc.RequestPasswordReset(ctx, "JDoe@test.cd"); err != nil {
			t.Fatalf("RequestPasswordReset() failed: %v", err)
		}
		msg, ok := emailsvc.LastSentMessage()
		if !ok {
			t.Fatal("expected a password reset email to be sent")
		}
		if msg.TemplateName != "password-reset" {
			t.Errorf("TemplateName = %q; want %q", msg.TemplateName, "password-reset")
		}
	})

	t.Run("request for unknown email", func(t *testing.T) {
		err := svc.RequestPasswordReset(ctx, "nobody@test.cd")
		if errors.Cause(err) != user.ErrNotFound {
			t.Errorf("RequestPasswordReset() error = %v; want %v", err, user.ErrNotFound)
		}
	})

	t.Run("reset with valid token", func(t *testing.T) {
		token, err := user.MakeToken(usr, conf)
		if err != nil {
			t.Fatalf("MakeToken() failed: %v", err)
		}
		err = svc.ResetPassword(ctx, user.ResetUserPassword{
			UID:      user.EncodeUID(usr),
			Token:    token,
			Password: "An0ther$ecret!",
		})
		if err != nil {
			t.Fatalf("ResetPassword() failed: %v", err)
		}

		fresh, err := repo.GetUserByID(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if err := fresh.CheckPassword("An0ther$ecret!"); err != nil {
			t.Errorf("CheckPassword() failed after reset: %v", err)
		}

		// the password change invalidated the token
		err = svc.ResetPassword(ctx, user.ResetUserPassword{
			UID:      user.EncodeUID(usr),
			Token:    token,
			Password: "Th1rd$ecret!",
		})
		if !user.IsInvalidToken(err) {
			t.Errorf("ResetPassword() error = %v; want an invalid token error", err)
		}
	})

	t.Run("reset with garbage uid", func(t *testing.T) {
		err := svc.ResetPassword(ctx, user.ResetUserPassword{UID: "???", Token: "x-y", Password: "pwd"})
		if !user.IsInvalidToken(err) {
			t.Errorf("ResetPassword() error = %v; want an invalid token error", err)
		}
	})
}

func TestServiceSetLastLogin(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "jdoe", "jdoe@test.cd", "John", "")
	if !usr.LastLogin.IsZero() {
		t.Fatal("new user already has a last login")
	}

	usr, err := svc.SetLastLogin(ctx, usr)
	if err != nil {
		t.Fatalf("SetLastLogin() failed: %v", err)
	}
	if usr.LastLogin.IsZero() {
		t.Error("LastLogin was not set")
	}

	fresh, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if fresh.LastLogin.IsZero() {
		t.Error("LastLogin was not persisted")
	}
}
