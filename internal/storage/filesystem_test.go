package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveVideo(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	path, n, err := s.SaveVideo("abc", "../../clip.mp4", strings.NewReader("not really a video"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "abc", "clip.mp4"), path)
	assert.EqualValues(t, 18, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not really a video", string(data))

	require.NoError(t, s.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestSaveVideoFailedReplaceKeepsCurrent(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	path, _, err := s.SaveVideo("sess", "clip.mp4", strings.NewReader("original video"))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = s.SaveVideo("sess", "clip.mp4", io.MultiReader(strings.NewReader("partial"), failingReader{boom}))
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original video", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "clip.mp4", entries[0].Name())
}

func TestSaveVideoReplacesSameName(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	first, _, err := s.SaveVideo("sess", "clip.mp4", strings.NewReader("one"))
	require.NoError(t, err)
	second, n, err := s.SaveVideo("sess", "clip.mp4", strings.NewReader("second"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 6, n)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSaveVideoRejectsNonVideo(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.SaveVideo("abc", "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestSessionDirTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.SaveVideo("../escape", "clip.mp4", strings.NewReader("x"))
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.ErrorIs(t, s.RemoveSession(".."), os.ErrPermission)
	assert.ErrorIs(t, s.Remove("/etc/passwd"), os.ErrPermission)
}

func TestRemoveSession(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	_, _, err = s.SaveVideo("abc", "clip.webm", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.RemoveSession("abc"))

	_, err = os.Stat(filepath.Join(root, "abc"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadText(t *testing.T) {
	got, err := ReadText(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = ReadText(strings.NewReader("hello!"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("a.MP4"))
	assert.True(t, IsVideoFile("a.webm"))
	assert.False(t, IsVideoFile("a.srt"))
}
