package weather

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("connection refused")

	netErr := fmt.Errorf("search: %w", &NetworkError{Op: "fetch forecast", Err: cause})
	assert.True(t, IsNetwork(netErr))
	assert.False(t, IsParse(netErr))
	assert.ErrorIs(t, netErr, cause)
	assert.Equal(t, "search: fetch forecast: connection refused", netErr.Error())

	withStatus := &NetworkError{Op: "delete history entry", Status: 502, Err: errors.New("bad gateway")}
	assert.Equal(t, "delete history entry: status 502: bad gateway", withStatus.Error())

	parseErr := &ParseError{Op: "list history", Err: errors.New("unexpected EOF")}
	assert.True(t, IsParse(parseErr))
	assert.False(t, IsNetwork(parseErr))
	assert.Contains(t, parseErr.Error(), "malformed response")
}
