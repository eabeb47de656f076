package models

import "testing"

func TestVisibleTo(t *testing.T) {
	cases := []struct {
		name    string
		msg     Message
		viewer  string
		visible bool
	}{
		{"public message", Message{From: "ana", To: Broadcast, Kind: KindMessage}, "bruno", true},
		{"status notice", Message{From: "ana", To: Broadcast, Kind: KindStatus}, "bruno", true},
		{"private to viewer", Message{From: "ana", To: "bruno", Kind: KindPrivate}, "bruno", true},
		{"private from viewer", Message{From: "ana", To: "bruno", Kind: KindPrivate}, "ana", true},
		{"private to someone else", Message{From: "ana", To: "bruno", Kind: KindPrivate}, "carla", false},
		{"private from broadcast name", Message{From: Broadcast, To: "bruno", Kind: KindPrivate}, "carla", true},
		{"private invisible to empty viewer", Message{From: "ana", To: "bruno", Kind: KindPrivate}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.VisibleTo(tc.viewer); got != tc.visible {
				t.Fatalf("VisibleTo(%q) = %v, want %v", tc.viewer, got, tc.visible)
			}
		})
	}
}
