package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key  Key
		want string
	}{
		"Single field":      {key: Key{{Name: "name", Value: "Toyota"}}, want: "name=Toyota"},
		"Composite":         {key: Key{{Name: "brand", Value: "Denso"}, {Name: "partNumber", Value: "90915"}}, want: "brand=Denso|partNumber=90915"},
		"Non string value":  {key: Key{{Name: "year", Value: 2024}}, want: "year=2024"},
		"Escaped separator": {key: Key{{Name: "name", Value: "A|B=C"}}, want: `name=A\|B\=C`},
		"Escaped backslash": {key: Key{{Name: "name", Value: `a\b`}}, want: `name=a\\b`},
		"Empty":             {key: Key{}, want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.key.String())
		})
	}
}

func TestKeyStringDoesNotCollide(t *testing.T) {
	t.Parallel()

	pairs := []struct{ a, b Key }{
		{
			a: Key{{Name: "name", Value: "Filter|brand=X"}, {Name: "brand", Value: "Y"}},
			b: Key{{Name: "name", Value: "Filter"}, {Name: "brand", Value: "X|brand=Y"}},
		},
		{
			a: Key{{Name: "name", Value: "a=b"}},
			b: Key{{Name: "name=a", Value: "b"}},
		},
		{
			a: Key{{Name: "name", Value: `a\`}, {Name: "x", Value: "y"}},
			b: Key{{Name: "name", Value: `a\|x=y`}},
		},
	}

	for _, p := range pairs {
		assert.NotEqual(t, p.a.String(), p.b.String())
	}
}
