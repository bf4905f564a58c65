package cert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRendererProducesPDF(t *testing.T) {
	r := NewRenderer("Chumcred Academy", "AI Essentials")
	data, err := r.Render("Jane Student", "CA-u1-20260830")
	require.NoError(t, err)
	require.True(t, len(data) > 500)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestRendererRequiresNameAndID(t *testing.T) {
	r := NewRenderer("Chumcred Academy", "AI Essentials")

	_, err := r.Render("", "CA-u1-20260830")
	require.Error(t, err)

	_, err = r.Render("Jane Student", "")
	require.Error(t, err)
}
