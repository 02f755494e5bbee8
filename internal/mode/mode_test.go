package mode_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/devflow/internal/config"
	"github.com/felixgeelhaar/devflow/internal/errors"
	"github.com/felixgeelhaar/devflow/internal/mode"
	"github.com/felixgeelhaar/devflow/internal/scope"
)

func TestFeature(t *testing.T) {
	m, err := mode.Feature(config.DefaultScopes())
	require.NoError(t, err)

	assert.Equal(t, "feature-development", m.Context.Role)
	assert.Len(t, m.Context.Workflow, 7)
	assert.NotEmpty(t, m.Context.ArchitecturePatterns)
	assert.Equal(t, config.DefaultScopes()["feature"], m.Context.Scope)
	assert.True(t, m.ValidateFile("src/lib/db.ts").Allowed)
	assert.False(t, m.ValidateFile("node_modules/react/index.js").Allowed)
}

func TestDesignEngineering(t *testing.T) {
	m, err := mode.DesignEngineering(config.DefaultScopes())
	require.NoError(t, err)

	assert.Equal(t, "design-engineering", m.Context.Role)
	assert.Len(t, m.Context.Restrictions, 4)
	assert.True(t, m.ValidateFile("src/components/Button.tsx").Allowed)

	res := m.ValidateChanges([]string{"src/components/Button.tsx", "src/app/api/users/route.ts"})
	assert.Equal(t, []string{"src/components/Button.tsx"}, res.Allowed)
	assert.Len(t, res.Blocked, 1)
}

func TestFix_DeterminesScope(t *testing.T) {
	tests := []struct {
		issue string
		want  string
	}{
		{"Submit Button is misaligned", "design-engineering"},
		{"API returns 500 on save", "backend"},
		{"Checkout workflow loses the cart", "feature"},
		{"Something is wrong", "contextual"},
	}

	for _, tt := range tests {
		t.Run(tt.issue, func(t *testing.T) {
			m, err := mode.Fix(config.DefaultScopes(), tt.issue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Context.DeterminedScope)
			assert.Contains(t, m.Banner, "📁 Determined scope: "+tt.want)
		})
	}
}

func TestFix_LowercasesIssue(t *testing.T) {
	m, err := mode.Fix(config.DefaultScopes(), "Login FAILS")
	require.NoError(t, err)
	assert.Equal(t, "login fails", m.Context.IssueDescription)
	assert.Len(t, m.Context.ScopingGuidance, 4)
}

func TestByName(t *testing.T) {
	for _, name := range mode.Names {
		m, err := mode.ByName(name, config.DefaultScopes(), "")
		require.NoError(t, err)
		assert.Equal(t, name, m.Name)
	}

	_, err := mode.ByName("refactor", config.DefaultScopes(), "")
	assert.Equal(t, errors.ErrCodeScopeUnknown, errors.CodeOf(err))
}

func TestMissingScope(t *testing.T) {
	_, err := mode.Feature(map[string]scope.Config{})
	assert.Equal(t, errors.ErrCodeScopeUnknown, errors.CodeOf(err))
}

func TestWriteBanner(t *testing.T) {
	m, err := mode.DesignEngineering(config.DefaultScopes())
	require.NoError(t, err)

	var buf bytes.Buffer
	m.WriteBanner(&buf)
	assert.Equal(t, "🎨 Design Engineering Mode Activated\n📁 Scope: Frontend components and client-side logic\n🚫 Restrictions: No API/DB/Service changes\n\n", buf.String())
}
