package markups

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainzone/internal/models"
)

const rasFile = `# Markups fiducial file version = 4.11
# CoordinateSystem = 0
# columns = id,x,y,z,ow,ox,oy,oz,vis,sel,lock,label,desc,associatedNodeID
vtkMRMLMarkupsFiducialNode_0,10.5,-3,22,0,0,0,1,1,1,0,A1,,vtkMRMLScalarVolumeNode1
vtkMRMLMarkupsFiducialNode_1,11,-3.25,22,0,0,0,1,1,0,0,A2,"deep, mesial",vtkMRMLScalarVolumeNode1
`

const lpsFile = `# Markups fiducial file version = 4.11
# CoordinateSystem = LPS
# columns = id,x,y,z,ow,ox,oy,oz,vis,sel,lock,label,desc,associatedNodeID
1,-10,3,22,0,0,0,1,1,1,0,B1,,
`

func TestReadRAS(t *testing.T) {
	list, err := Read(strings.NewReader(rasFile))
	require.NoError(t, err)

	require.Equal(t, 2, list.Count())
	assert.False(t, list.LPS)
	assert.Len(t, list.Header, 3)

	assert.True(t, list.IsSelected(0))
	assert.False(t, list.IsSelected(1))
	assert.Equal(t, [3]float64{10.5, -3, 22}, list.Position(0))
	assert.Equal(t, "", list.Description(0))
	assert.Equal(t, "deep, mesial", list.Description(1))
	assert.Equal(t, "A2", list.Points[1].Label())
	assert.Equal(t, "A2", list.Label(1))
}

func TestReadLPSConvertsToRAS(t *testing.T) {
	list, err := Read(strings.NewReader(lpsFile))
	require.NoError(t, err)

	assert.True(t, list.LPS)
	assert.Equal(t, [3]float64{10, -3, 22}, list.Position(0))
}

func TestReadWithoutHeader(t *testing.T) {
	list, err := Read(strings.NewReader("p0,1,2,3,0,0,0,1,1,1,0,X,,\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultColumns, list.Columns)
	assert.Equal(t, [3]float64{1, 2, 3}, list.Position(0))
	assert.True(t, list.IsSelected(0))
}

func TestReadMissingSelColumn(t *testing.T) {
	input := "# columns = label,x,y,z\nc1,1,2,3\n"
	list, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	assert.True(t, list.IsSelected(0))
	assert.Equal(t, "c1", list.Points[0].Label())
}

func TestReadBadCoordinate(t *testing.T) {
	_, err := Read(strings.NewReader("p0,abc,2,3,0,0,0,1,1,1,0,X,,\n"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, models.ErrParse))
}

func TestAppendDescriptionPreservesContent(t *testing.T) {
	list, err := Read(strings.NewReader(rasFile))
	require.NoError(t, err)

	list.AppendDescription(1, " Hip,100 PTD,1.00")
	assert.Equal(t, "deep, mesial Hip,100 PTD,1.00", list.Description(1))
}

func TestWriteRoundTrip(t *testing.T) {
	list, err := Read(strings.NewReader(lpsFile))
	require.NoError(t, err)
	list.AppendDescription(0, " White-Matter,100 PTD,-1.00")

	var buf bytes.Buffer
	require.NoError(t, list.Write(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Markups fiducial file version = 4.11\n"))
	// written back in LPS
	assert.Contains(t, out, "1,-10,3,22,")
	assert.Contains(t, out, `B1," White-Matter,100 PTD,-1.00",`)

	again, err := Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, list.Position(0), again.Position(0))
	assert.Equal(t, list.Description(0), again.Description(0))
}

func TestWriteKeepsCoordinateText(t *testing.T) {
	input := "# CoordinateSystem = LPS\n" +
		"# columns = id,x,y,z,ow,ox,oy,oz,vis,sel,lock,label,desc,associatedNodeID\n" +
		"1,0,1.000,-0.0,0,0,0,1,1,1,0,C1,,\n" +
		"2,1e1,-2.50,3,0,0,0,1,1,1,0,C2,,\n"

	list, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, [3]float64{-10, 2.5, 3}, list.Position(1))

	var buf bytes.Buffer
	require.NoError(t, list.Write(&buf))
	assert.Equal(t, input, buf.String())
}

func TestWriteMovedPointInLPS(t *testing.T) {
	list, err := Read(strings.NewReader(lpsFile))
	require.NoError(t, err)
	list.Points[0].Position = [3]float64{0, -4.25, 22}

	var buf bytes.Buffer
	require.NoError(t, list.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "1,0,4.25,22,")
	assert.NotContains(t, out, "-0")

	again, err := Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, -4.25, 22}, again.Position(0))
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "contacts.fcsv")
	require.NoError(t, os.WriteFile(in, []byte(rasFile), 0644))

	list, err := Load(in)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.fcsv")
	require.NoError(t, list.Save(out))

	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, list.Count(), again.Count())
	assert.Equal(t, "deep, mesial", again.Description(1))

	_, err = Load(filepath.Join(dir, "missing.fcsv"))
	assert.True(t, eris.Is(err, models.ErrConfiguration))
}
