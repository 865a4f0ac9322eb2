// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	var buf bytes.Buffer
	l := &Lines{W: &buf, Every: 2}
	l.Start(5)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		l.Step(msg)
	}
	l.Done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"[2/5] b", "[4/5] d", "[5/5] e"}, lines)
}

func TestBar_DoneWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf, "parsing")
	b.Step("ignored")
	b.Done()
	assert.Empty(t, buf.String())
}

func TestReporters(t *testing.T) {
	var _ Reporter = Nop{}
	var _ Reporter = &Lines{}
	var _ Reporter = &Bar{}
}
