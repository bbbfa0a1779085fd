package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMediaMarkdown(t *testing.T) {
	in := "Here is a great unit!\n![unit photo](http://cdn.example.com/u1.jpg)\nIt has 3 rooms."
	out := StripMediaMarkdown(in)
	assert.NotContains(t, out, "http://cdn.example.com")
	assert.Contains(t, out, "It has 3 rooms.")

	// Linked media keeps the label, drops the URL.
	in = "Check [the video](http://cdn.example.com/tour.mp4) now"
	out = StripMediaMarkdown(in)
	assert.Equal(t, "Check the video now", out)

	// Bare media URLs vanish.
	out = StripMediaMarkdown("See http://cdn.example.com/a.png here")
	assert.NotContains(t, out, "cdn.example.com")
}

func TestStripStructuredPayloads(t *testing.T) {
	in := "Intro line\n" + CarouselMarker + `{"type":"property_carousel"}` + "\nOutro"
	out := StripStructuredPayloads(in)
	assert.Equal(t, "Intro line\nOutro", out)

	in = DetailStartMarker + `{"unit_id":"1"}` + DetailEndMarker
	assert.Equal(t, "", StripStructuredPayloads(in))

	in = PaymentPlanMarker + `{"plans":[]}`
	assert.Equal(t, "", StripStructuredPayloads(in))

	assert.Equal(t, "plain text", StripStructuredPayloads("plain text"))
}

func TestHasStructuredMarker(t *testing.T) {
	assert.True(t, HasStructuredMarker(CarouselMarker+"{}"))
	assert.True(t, HasStructuredMarker("x "+PaymentPlanMarker+"{}"))
	assert.True(t, HasStructuredMarker(DetailStartMarker+"{}"+DetailEndMarker))
	assert.False(t, HasStructuredMarker("just text"))
}

func TestFixImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing extension", "http://cdn.example.com/unit42", "http://cdn.example.com/unit42.jpg"},
		{"doubled extension", "http://cdn.example.com/unit42.jpg.jpg", "http://cdn.example.com/unit42.jpg"},
		{"already fine", "https://cdn.example.com/unit42.png", "https://cdn.example.com/unit42.png"},
		{"zero placeholder", "0", ""},
		{"null placeholder", "NULL", ""},
		{"empty", "", ""},
		{"relative path rejected", "images/unit42.jpg", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FixImageURL(tc.in))
		})
	}
}
