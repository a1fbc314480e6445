package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libzRecipe = `SUMMARY="A compression library"
DESCRIPTION='Literal $portName text'
HOMEPAGE="https://zlib.net"
REVISION="1"
SOURCE_URI="https://zlib.net/zlib-$portVersion.tar.gz"
ARCHITECTURES="x86_gcc2 x86 x86_64"

PROVIDES="
	libz$secondaryArchSuffix = $portVersion
	lib:libz$secondaryArchSuffix = $portVersion
	"
REQUIRES="
	haiku$secondaryArchSuffix
	"

PROVIDES_devel="
	libz${secondaryArchSuffix}_devel = $portVersion
	devel:libz$secondaryArchSuffix = $portVersion
	"
REQUIRES_devel="
	libz$secondaryArchSuffix == $portVersion base
	"

BUILD_REQUIRES="
	haiku${secondaryArchSuffix}_devel
	"
BUILD_PREREQUIRES="
	cmd:gcc$secondaryArchSuffix # compiler
	cmd:make
	"

export SOURCE_DIR="zlib-$portVersion"

BUILD()
{
	REQUIRES="not read"
	./configure --prefix=$prefix
	make $jobArgs
}

INSTALL()
{
	make install
}
`

func TestParseVariables(t *testing.T) {
	vars, err := ParseVariables([]byte(libzRecipe), Builtins{PortName: "libz", PortVersion: "1.2.13"})
	require.NoError(t, err)

	assert.Equal(t, "A compression library", vars["SUMMARY"])
	assert.Equal(t, "Literal $portName text", vars["DESCRIPTION"])
	assert.Equal(t, "https://zlib.net/zlib-1.2.13.tar.gz", vars["SOURCE_URI"])
	assert.Equal(t, "zlib-1.2.13", vars["SOURCE_DIR"])
	assert.Equal(t, []string{"haiku"}, Lines(vars["REQUIRES"]))
	assert.Equal(t, []string{"libz == 1.2.13 base"}, Lines(vars["REQUIRES_devel"]))
	assert.Equal(t, []string{"haiku_devel"}, Lines(vars["BUILD_REQUIRES"]))
	assert.Equal(t, []string{"cmd:gcc # compiler", "cmd:make"}, Lines(vars["BUILD_PREREQUIRES"]))
}

func TestParseVariables_SecondaryArchitecture(t *testing.T) {
	vars, err := ParseVariables([]byte(libzRecipe), Builtins{
		PortName:            "libz",
		PortVersion:         "1.2.13",
		SecondaryArchSuffix: "_x86",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"haiku_x86"}, Lines(vars["REQUIRES"]))
	assert.Equal(t, []string{"haiku_x86_devel"}, Lines(vars["BUILD_REQUIRES"]))
}

func TestParseVariables_LaterAssignmentsSeeEarlierOnes(t *testing.T) {
	src := []byte(`MAJOR="5"
FULL="$MAJOR.2"
REQUIRES="bash-$FULL $portVersionedName"
`)

	vars, err := ParseVariables(src, Builtins{PortName: "bash", PortVersion: "5.2"})
	require.NoError(t, err)

	assert.Equal(t, "5.2", vars["FULL"])
	assert.Equal(t, "bash-5.2 bash-5.2", vars["REQUIRES"])
}

func TestParseVariables_FunctionBodiesAreIgnored(t *testing.T) {
	vars, err := ParseVariables([]byte(libzRecipe), Builtins{PortName: "libz", PortVersion: "1.2.13"})
	require.NoError(t, err)

	assert.NotEqual(t, "not read", vars["REQUIRES"])
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, Lines("\n\ta\n\n   b c  \n\t"))
	assert.Nil(t, Lines("  \n\t"))
}
