package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compiled = `// @ts-nocheck
import { S1 } from "./s";
type Props = { title: string };
export default function (props: Props) {
  return {
    type: "__RJT_COMPONENT__",
    name: "s1",
    props: {
      title: props.title
    }
  };
}
`

func TestEmitSource(t *testing.T) {
	out, err := Emit(compiled, "Page.tsx", FormatSource)
	require.NoError(t, err)
	assert.Equal(t, compiled, out)
}

func TestEmitJS(t *testing.T) {
	out, err := Emit(compiled, "Page.tsx", FormatJS)
	require.NoError(t, err)

	assert.NotContains(t, out, "type Props")
	assert.NotContains(t, out, ": Props")
	assert.Contains(t, out, "__RJT_COMPONENT__")
	// esbuild names the anonymous default export and re-exports it.
	assert.Regexp(t, `export\s*\{\s*\w+ as default\s*\}|export default function`, out)
	assert.Contains(t, out, "function")
}

func TestEmitJSError(t *testing.T) {
	_, err := Emit("export default function (", "Page.tsx", FormatJS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Page.tsx:1:")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatSource, f)

	f, err = ParseFormat("js")
	require.NoError(t, err)
	assert.Equal(t, FormatJS, f)

	_, err = ParseFormat("wasm")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "dist/Page.tsx", Path("dist/Page.tsx", FormatSource))
	assert.Equal(t, "dist/Page.js", Path("dist/Page.tsx", FormatJS))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "nested", "Page.tsx")

	written, err := WriteFile(outPath, compiled, FormatSource)
	require.NoError(t, err)
	assert.Equal(t, outPath, written)
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, compiled, string(data))

	written, err = WriteFile(outPath, compiled, FormatJS)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "Page.js"), written)
	assert.FileExists(t, written)
}
