package models

import (
	"strings"
	"testing"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"Valid user", User{Email: "test@example.com", Nickname: "vibe"}, false},
		{"Empty email", User{Email: "", Nickname: "vibe"}, true},
		{"Invalid email", User{Email: "invalid-email", Nickname: "vibe"}, true},
		{"Empty nickname", User{Email: "test@example.com", Nickname: ""}, true},
		{"Nickname too short", User{Email: "test@example.com", Nickname: "A"}, true},
		{"Nickname too long", User{Email: "test@example.com", Nickname: strings.Repeat("n", 101)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("User.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_RoleAndStatus(t *testing.T) {
	u := User{Role: RoleAdmin, Status: UserStatusLimited}
	if !u.IsAdmin() || !u.IsLimited() {
		t.Fatalf("expected admin and limited, got %+v", u)
	}

	u = User{Role: RoleUser, Status: UserStatusActive}
	if u.IsAdmin() || u.IsLimited() {
		t.Fatalf("expected plain active user, got %+v", u)
	}
}

func TestCreateProjectRequest_ModeratedText(t *testing.T) {
	desc := "long description"
	req := CreateProjectRequest{Title: "title", Summary: "summary", Description: &desc, Tags: []string{"go", "web"}}

	got := req.ModeratedText()
	want := []string{"title", "summary", "long description", "go", "web"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("ModeratedText() = %v, want %v", got, want)
	}

	req.Description = nil
	if n := len(req.ModeratedText()); n != 4 {
		t.Fatalf("expected 4 texts without description, got %d", n)
	}
}

func TestReportStatus(t *testing.T) {
	for _, s := range []string{ReportStatusOpen, ReportStatusReviewing, ReportStatusResolved, ReportStatusRejected} {
		if !IsValidReportStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	if IsValidReportStatus("closed") {
		t.Error("closed should not be a valid report status")
	}
	if !IsClosingReportStatus(ReportStatusResolved) || !IsClosingReportStatus(ReportStatusRejected) {
		t.Error("resolved and rejected close a report")
	}
	if IsClosingReportStatus(ReportStatusReviewing) {
		t.Error("reviewing does not close a report")
	}
}
