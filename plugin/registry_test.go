package plugin_test

import (
	"testing"

	Np "github.com/kalin91/nvmonitor/plugin"
)

func TestTransformerLookup(t *testing.T) {
	t.Run("Returns known transformers", func(t *testing.T) {
		for _, known := range []string{"calc_rate", "json_path"} {
			got, err := Np.TransformerLookup(known, "a.b")
			assertError(t, err, nil)
			assertStringContains(t, got.Type(), known)
		}
	})

	t.Run("Passes the argument through", func(t *testing.T) {
		got, err := Np.TransformerLookup("json_path", "gpu.power.draw")
		assertError(t, err, nil)
		jp, ok := got.(*Np.JSONPathPlugin)
		if !ok {
			t.Fatalf("expected *JSONPathPlugin, got %T", got)
		}
		assertStringContains(t, jp.Path, "gpu.power.draw")
	})

	t.Run("Returns error if transformers don't exist", func(t *testing.T) {
		_, err := Np.TransformerLookup("craquemattic", "")
		assertGotError(t, err)
	})
}
