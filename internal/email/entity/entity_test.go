package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateContext_OrderAndOverwrite(t *testing.T) {
	t.Parallel()

	c := NewTemplateContext().
		Set(VarUsername, "a@b.com").
		Set(VarVerificationCode, "123456").
		Set(VarValidityPeriod, 10).
		Set(VarSubject, "")

	c.Set(VarUsername, "alice").Set("extra", true)

	assert.Equal(t, []string{VarUsername, VarVerificationCode, VarValidityPeriod, VarSubject, "extra"}, c.Keys())
	assert.Equal(t, 5, c.Len())

	v, ok := c.Get(VarUsername)
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	m := c.Map()
	m[VarSubject] = "changed"
	v, _ = c.Get(VarSubject)
	assert.Equal(t, "", v)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	base := NewError(KindTransportConnection, "", errors.New("dial tcp: refused"))

	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindTransportConnection, KindOf(base))
	assert.Equal(t, KindTransportConnection, KindOf(fmt.Errorf("wrapped: %w", base)))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
}

func TestFailureAndSuccess(t *testing.T) {
	t.Parallel()

	ok := Success(7)
	assert.True(t, ok.Succeeded)
	assert.Equal(t, KindNone, ok.Kind)
	assert.Equal(t, int64(7), ok.ID)

	v := Failure(1, NewError(KindValidation, "Recipient cannot be empty", errors.New("raw")))
	assert.False(t, v.Succeeded)
	assert.Equal(t, KindValidation, v.Kind)
	assert.Equal(t, "Recipient cannot be empty", v.Detail)

	tr := Failure(2, NewError(KindTemplateRender, "", errors.New("no such template")))
	assert.Equal(t, KindTemplateRender, tr.Kind)
	assert.Equal(t, "template_render: no such template", tr.Detail)

	un := Failure(3, nil)
	assert.Equal(t, KindUnexpected, un.Kind)
}

func TestErrorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "transport_format", KindTransportFormat.String())
	assert.Equal(t, "unknown", ErrorKind(99).String())
}
