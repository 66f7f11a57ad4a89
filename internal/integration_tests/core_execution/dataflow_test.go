package core_execution

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/integration_tests/itest"
	"github.com/specialistvlad/boxwire/internal/testutil"
	"github.com/specialistvlad/boxwire/internal/value"
	"github.com/specialistvlad/boxwire/modules/arithmetic"
	"github.com/specialistvlad/boxwire/modules/debug"
	"github.com/specialistvlad/boxwire/modules/primitiveio"
	"github.com/specialistvlad/boxwire/modules/system"
)

func wire(id, src, srcPlug, dest, destPlug string) string {
	return fmt.Sprintf(`
wire %q {
  src_box   = %q
  src_plug  = %q
  dest_box  = %q
  dest_plug = %q
}
`, id, src, srcPlug, dest, destPlug)
}

// TestCoreExecution_FanIn checks that two sources meet in one box and the
// result travels on to the end of the chain.
func TestCoreExecution_FanIn(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	out := &testutil.SafeBuffer{}
	programHCL := `
box "two" {
  type = "test/two"
}
box "three" {
  type = "test/three"
}
box "mul" {
  type = "arithmetic/mul"
}
box "text" {
  type = "primitive_io/to_string"
}
box "print" {
  type = "system/print"
}
` + wire("w1", "two", "value", "mul", "a") +
		wire("w2", "three", "value", "mul", "b") +
		wire("w3", "mul", "result", "text", "value") +
		wire("w4", "text", "string", "print", "value")

	// --- Act ---
	result := itest.Run(t, map[string]string{"main.hcl": programHCL},
		itest.SourceModule{"two": value.Number(2), "three": value.Number(3)},
		&arithmetic.Module{}, &primitiveio.Module{}, &system.Module{Out: out},
	)
	require.NoError(t, result.Err, "test run failed unexpectedly")

	// --- Assert ---
	assert.Contains(t, out.String(), "print: 6\n")
	require.Len(t, result.Saved.Boxes, 5)
	require.Len(t, result.Saved.Wires, 4)
	assert.Equal(t, "w4", result.Saved.Wires[3].ID)
}

// TestCoreExecution_SplitFiles checks that a program spread over several
// files in a directory loads as one.
func TestCoreExecution_SplitFiles(t *testing.T) {
	t.Parallel()
	out := &testutil.SafeBuffer{}
	files := map[string]string{
		"a_boxes.hcl": `
box "n" {
  type = "test/n"
}
box "print" {
  type = "system/print"
}
`,
		"nested/b_wires.hcl": wire("w", "n", "value", "print", "value"),
	}

	result := itest.Run(t, files, itest.SourceModule{"n": value.String("hi")}, &system.Module{Out: out})
	require.NoError(t, result.Err)
	assert.Equal(t, "print: hi\n", out.String())
}

// TestCoreExecution_SlowComputationYields checks that a long computation
// gives way to other boxes and still delivers its result.
func TestCoreExecution_SlowComputationYields(t *testing.T) {
	t.Parallel()
	const iterations = 5000
	out := &testutil.SafeBuffer{}
	programHCL := `
box "n" {
  type = "test/n"
}
box "slow" {
  type = "debug/slow"
}
box "print" {
  type = "system/print"
}
` + wire("w1", "n", "value", "slow", "iterations") +
		wire("w2", "slow", "output", "print", "value")

	result := itest.Run(t, map[string]string{"main.hcl": programHCL},
		itest.SourceModule{"n": value.Number(iterations)},
		&debug.Module{}, &system.Module{Out: out},
	)
	require.NoError(t, result.Err)

	want, err := debug.Recurrence(iterations, nil)
	require.NoError(t, err)
	assert.Equal(t, "print: "+value.Format(value.Number(want))+"\n", out.String())
}

// TestCoreExecution_BoxFailureIsNotFatal checks that a failing box is
// reported while the rest of the program keeps going.
func TestCoreExecution_BoxFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	out := &testutil.SafeBuffer{}
	programHCL := `
box "bad" {
  type = "test/bad"
}
box "good" {
  type = "test/good"
}
box "add" {
  type = "arithmetic/add"
}
box "print" {
  type = "system/print"
}
` + wire("w1", "bad", "value", "add", "a") +
		wire("w2", "good", "value", "print", "value")

	result := itest.Run(t, map[string]string{"main.hcl": programHCL},
		itest.SourceModule{"bad": value.String("x"), "good": value.Number(1)},
		&arithmetic.Module{}, &system.Module{Out: out},
	)
	require.NoError(t, result.Err)
	assert.Equal(t, "print: 1\n", out.String())
	assert.Contains(t, result.LogOutput, "Box finished processing with error.")
	assert.Contains(t, result.LogOutput, "box=add")
}
