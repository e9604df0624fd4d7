package subst

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/me/jobscript/pkg/jobtmpl"
)

func TestSubstitute(t *testing.T) {
	vars := jobtmpl.ResolvedVariables{
		"SCRIPT_FILE": jobtmpl.StringValue("sim.py"),
		"NAME":        jobtmpl.StringValue("x"),
		"NAME_X":      jobtmpl.StringValue("long"),
		"NTASKS":      jobtmpl.IntValue(4),
		"MEM_GB":      jobtmpl.NumberValue(0.5),
		"LOOP":        jobtmpl.StringValue("$NAME and ${NAME}"),
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"brace form", "python3 ${SCRIPT_FILE}", "python3 sim.py"},
		{"bare form", "echo $NAME", "echo x"},
		{"bare form at punctuation", "echo $NAME-$NAME.", "echo x-x."},
		{"longest identifier wins", "echo $NAME_X", "echo long"},
		{"no boundary, no match", "echo $NAMEX", "echo $NAMEX"},
		{"unknown brace left verbatim", "echo ${MISSING}", "echo ${MISSING}"},
		{"unknown bare left verbatim", "echo $MISSING", "echo $MISSING"},
		{"numbers rendered as decimals", "mpirun -np $NTASKS --mem ${MEM_GB}G", "mpirun -np 4 --mem 0.5G"},
		{"value not re-expanded", "run ${LOOP}", "run $NAME and ${NAME}"},
		{"unterminated brace", "echo ${NAME", "echo ${NAME"},
		{"empty brace", "echo ${}", "echo ${}"},
		{"lone dollar", "cost $ 5 $", "cost $ 5 $"},
		{"double dollar", "pid $$NAME", "pid $x"},
		{"no placeholders", "ls -la", "ls -la"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, vars))
		})
	}
}

func TestSubstitute_EmptyVars(t *testing.T) {
	assert.Equal(t, "echo ${MISSING}", Substitute("echo ${MISSING}", nil))
	assert.Equal(t, "echo ${MISSING}", Substitute("echo ${MISSING}", jobtmpl.ResolvedVariables{}))
}

func TestNames(t *testing.T) {
	got := Names("${A} $B ${A} $C_1-$B ${ } $")
	assert.Equal(t, []string{"A", "B", "C_1", " "}, got)
}
