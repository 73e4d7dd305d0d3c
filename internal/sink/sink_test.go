// ABOUTME: Tests for sink inquiry parsing
// ABOUTME: Verifies connector output is parsed into devices
package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInquiry(t *testing.T) {
	out := `28-fa-19-08-57-9f - JBL Charge 5
a8-16-9d-d3-54-b8 - JBL Charge 5 Wi-Fi

Searching...
`

	devices := parseInquiry(out)
	assert.Equal(t, []Device{
		{Address: "28-fa-19-08-57-9f", Name: "JBL Charge 5"},
		{Address: "a8-16-9d-d3-54-b8", Name: "JBL Charge 5 Wi-Fi"},
	}, devices)
}

func TestParseInquiryNameWithSeparator(t *testing.T) {
	devices := parseInquiry("aa-bb-cc-dd-ee-ff - Living Room - Rear\n")
	assert.Equal(t, []Device{{Address: "aa-bb-cc-dd-ee-ff", Name: "Living Room - Rear"}}, devices)
}

func TestParseInquiryEmpty(t *testing.T) {
	assert.Empty(t, parseInquiry(""))
	assert.Empty(t, parseInquiry("no devices found\n"))
}
