package models

import "testing"

func TestSpamLabelRoundTrip(t *testing.T) {
	tests := []struct {
		status CommentStatus
		label  string
	}{
		{CommentSpam, "spam"},
		{CommentApproved, "approved"},
		{CommentDenied, "rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := tt.status.SpamLabel(); got != tt.label {
				t.Errorf("%q.SpamLabel() = %q, want %q", tt.status, got, tt.label)
			}
			back, ok := StatusFromSpamLabel(tt.label)
			if !ok || back != tt.status {
				t.Errorf("StatusFromSpamLabel(%q) = %q, %v", tt.label, back, ok)
			}
		})
	}
}

func TestStatusFromSpamLabelRejectsCommentVocabulary(t *testing.T) {
	for _, label := range []string{"pending", "denied", "", "SPAM"} {
		if _, ok := StatusFromSpamLabel(label); ok {
			t.Errorf("StatusFromSpamLabel(%q) accepted", label)
		}
	}
}

func TestCommentStatsSpamView(t *testing.T) {
	s := CommentStats{Total: 10, Pending: 1, Approved: 4, Spam: 3, Denied: 2}.SpamView()
	want := SpamStats{Total: 10, Spam: 3, Approved: 4, Rejected: 2}
	if s != want {
		t.Errorf("SpamView() = %+v, want %+v", s, want)
	}
}

func TestUploadKindForMIME(t *testing.T) {
	tests := []struct {
		mime string
		want UploadKind
	}{
		{"image/png", UploadImage},
		{"IMAGE/JPEG", UploadImage},
		{"video/mp4", UploadVideo},
		{"audio/mpeg", UploadAudio},
		{"text/vtt", UploadCaption},
		{"application/pdf", UploadFile},
		{"", UploadFile},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := UploadKindForMIME(tt.mime); got != tt.want {
				t.Errorf("UploadKindForMIME(%q) = %q, want %q", tt.mime, got, tt.want)
			}
		})
	}
}
