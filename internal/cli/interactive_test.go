package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractiveSession(t *testing.T) {
	p := &scriptedPrompter{answers: []string{
		// demand; "done" is refused until two points exist
		"1,10", "done", "2,5", "4,2.5", "DONE",
		// supply
		"1,1", "oops", "2,2", "3,3", "done",
		// queries
		"abc", "2", "0", "exit",
	}}

	out, err := execute(t, p, "--no-plot")
	require.NoError(t, err)

	assert.Equal(t, []string{"done", "oops", "abc"}, p.rejected)
	assert.Contains(t, out, "Demand points: [(1, 10), (2, 5), (4, 2.5)]")
	assert.Contains(t, out, "Supply points: [(1, 1), (2, 2), (3, 3)]")
	assert.Contains(t, out, "Equilibrium Price = 3.16, Equilibrium Quantity = 3.16")
	assert.Contains(t, out, "At price 2, Quantity Supplied: 2.00, Quantity Demanded: 5.00")
	assert.Contains(t, out, "Error: demand at price 0")
	assert.Contains(t, out, "Goodbye.")

	demandAt := strings.Index(out, "Demand points")
	supplyAt := strings.Index(out, "Supply points")
	assert.Less(t, demandAt, supplyAt, "demand is collected first")
}

func TestInteractiveSessionAborted(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"1,10", "2,5"}}
	out, err := execute(t, p, "--no-plot")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
}

func TestInteractiveSessionRestartsAfterFitError(t *testing.T) {
	p := &scriptedPrompter{answers: []string{
		"1,10", "2,5", "done",
		"2,1", "2,3", "done",
		"1,10", "2,5", "4,2.5", "done",
		"1,1", "2,2", "3,3", "done",
		"exit",
	}}
	out, err := execute(t, p, "--no-plot")
	require.NoError(t, err)

	assert.Contains(t, out, "Error: fit supply curve")
	assert.Contains(t, out, "Please enter the points again.")
	assert.Contains(t, out, "Equilibrium Price = 3.16, Equilibrium Quantity = 3.16")
	assert.Contains(t, out, "Goodbye.")
}
