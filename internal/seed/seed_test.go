package seed

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestBundledDataset(t *testing.T) {
	d, err := Source{}.Dataset()
	require.NoError(t, err)
	require.NotEmpty(t, d.Students)
	require.NotEmpty(t, d.Mentors)
	require.NoError(t, d.Check())

	var dave bool
	for _, s := range d.Students {
		if s.Name == "Dave" {
			dave = true
			require.NotNil(t, s.PreviousMentor)
			require.Equal(t, "Carol", *s.PreviousMentor)
			require.Equal(t, "B42", s.Extra["batch"])
		}
	}
	require.True(t, dave)
}

func TestLoadCustomDir(t *testing.T) {
	fsys := fstest.MapFS{
		StudentFile: {Data: []byte(`[{"name":"Zed","mentor":"Yara"}]`)},
		MentorFile:  {Data: []byte(`[{"name":"Yara","students_teaching":["Zed"]},{"name":"Xena"}]`)},
	}

	d, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, d.Students, 1)
	require.Len(t, d.Mentors, 2)
	require.Equal(t, []string{}, d.Mentors[1].StudentsTeaching)
	require.NoError(t, d.Check())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(fstest.MapFS{MentorFile: {Data: []byte(`[]`)}})
	require.Error(t, err)

	_, err = Load(fstest.MapFS{
		StudentFile: {Data: []byte(`[{"mentor":"Yara"}]`)},
		MentorFile:  {Data: []byte(`[]`)},
	})
	require.ErrorContains(t, err, "missing name")
}

func TestCheckInconsistent(t *testing.T) {
	d, err := Load(fstest.MapFS{
		StudentFile: {Data: []byte(`[{"name":"Zed","mentor":"Yara"},{"name":"Quinn"}]`)},
		MentorFile:  {Data: []byte(`[{"name":"Yara","students_teaching":["Quinn","Ghost"]}]`)},
	})
	require.NoError(t, err)

	err = d.Check()
	require.ErrorContains(t, err, "student Zed has mentor Yara")
	require.ErrorContains(t, err, "student Quinn has no mentor")
	require.ErrorContains(t, err, "unknown student Ghost")
}
