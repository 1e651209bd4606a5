package stcerr_test

import (
	"strings"
	"testing"

	"martianoff/stc/stcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic(t *testing.T) {
	err := stcerr.NewDiagnostic(stcerr.TypeMethodNotFound, "Cannot find matching method Foo#bar()")
	assert.Equal(t, stcerr.TypeMethodNotFound, err.Type())
	assert.True(t, err.Synthetic())
	assert.Equal(t, "[MethodNotFound] Cannot find matching method Foo#bar()", err.Error())
}

func TestDiagnosticAt(t *testing.T) {
	err := stcerr.NewDiagnosticAt(stcerr.TypeIncompatibleAssignment, 10, 5, 10, 17, "Cannot assign value of type java.lang.String to variable of type int")
	assert.Equal(t, 10, err.Line)
	assert.Equal(t, 5, err.Column)
	assert.Equal(t, 17, err.EndColumn)
	assert.False(t, err.Synthetic())
	assert.Equal(t, "[IncompatibleAssignment] line 10:5 Cannot assign value of type java.lang.String to variable of type int", err.Error())
}

func TestDiagnosticInFile(t *testing.T) {
	err := stcerr.NewDiagnosticAt(stcerr.TypeReadOnly, 3, 1, 3, 9, "Cannot set read-only property: name").InFile("unit.yaml")
	assert.Equal(t, "unit.yaml", err.FilePath)
	assert.Equal(t, "[ReadOnly] unit.yaml:3:1 Cannot set read-only property: name", err.Error())
}

func TestMultiError(t *testing.T) {
	e1 := stcerr.NewDiagnosticAt(stcerr.TypeInvalidCast, 1, 1, 1, 2, "error 1")
	e2 := stcerr.NewDiagnosticAt(stcerr.TypeReadOnly, 2, 2, 2, 3, "error 2")
	multi := &stcerr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, stcerr.TypeInvalidCast, multi.Type())
	errMsg := multi.Error()
	assert.Contains(t, errMsg, "2 error(s) occurred:")
	assert.Contains(t, errMsg, "- [InvalidCast] line 1:1 error 1")
	assert.Contains(t, errMsg, "- [ReadOnly] line 2:2 error 2")
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := &stcerr.MultiError{Errors: []error{}}
	assert.Equal(t, stcerr.ErrorType("MultiError"), multi.Type())
	assert.True(t, strings.HasPrefix(multi.Error(), "0 error(s) occurred:"))
}

func TestInternalErrorDump(t *testing.T) {
	type node struct {
		Name string
	}
	err := stcerr.NewInternalError("no connection for placeholder T", &node{Name: "Box"})
	assert.Equal(t, stcerr.TypeInternal, err.Type())
	assert.Contains(t, err.Error(), "no connection for placeholder T")
	assert.Contains(t, err.Dump, "Box")
}

func TestCollectorDeduplicatesByCoordinate(t *testing.T) {
	c := stcerr.NewCollector(false)
	assert.True(t, c.Add(stcerr.NewDiagnosticAt(stcerr.TypeMethodNotFound, 4, 2, 4, 9, "first")))
	assert.False(t, c.Add(stcerr.NewDiagnosticAt(stcerr.TypeMethodNotFound, 4, 2, 4, 9, "again on second pass")))
	assert.True(t, c.Add(stcerr.NewDiagnosticAt(stcerr.TypeReadOnly, 5, 2, 5, 9, "second")))

	diags := c.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "first", diags[0].Msg)
	assert.Equal(t, "second", diags[1].Msg)
	assert.Error(t, c.Err())
}

func TestCollectorSyntheticPositions(t *testing.T) {
	quiet := stcerr.NewCollector(false)
	assert.False(t, quiet.Add(stcerr.NewDiagnostic(stcerr.TypeMethodNotFound, "generated")))
	assert.Equal(t, 0, quiet.Len())
	assert.NoError(t, quiet.Err())

	debug := stcerr.NewCollector(true)
	assert.True(t, debug.Add(stcerr.NewDiagnostic(stcerr.TypeMethodNotFound, "generated a")))
	assert.True(t, debug.Add(stcerr.NewDiagnostic(stcerr.TypeMethodNotFound, "generated b")))
	assert.False(t, debug.Add(stcerr.NewDiagnostic(stcerr.TypeMethodNotFound, "generated a")))
	assert.Equal(t, 2, debug.Len())
}
