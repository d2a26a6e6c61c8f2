package mp4

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/gomp4/format/mp4/mp4io"
)

// pattern returns n bytes counting up from seed.
func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

// testTrak builds a minimal audio trak whose stbl holds the given boxes.
func testTrak(id uint32, boxes ...mp4io.Atom) *mp4io.Track {
	stsd := &mp4io.SampleDesc{}
	stsd.Add(mp4io.NewMP4ADesc(48000, mp4io.NewAudioElemStreamDesc([]byte{0x11, 0x90}, 0, 0)))

	stbl := &mp4io.SampleTable{}
	stbl.Add(stsd)
	stbl.Add(boxes...)

	minf := &mp4io.MediaInfo{}
	minf.Add(&mp4io.SoundMediaInfo{}, mp4io.NewSelfContainedDataInfo(), stbl)

	mdia := &mp4io.Media{}
	mdia.Add(
		&mp4io.MediaHeader{TimeScale: 48000, Language: "und"},
		mp4io.NewHandlerRefer(mp4io.HandlerSound, soundHandlerName),
		minf,
	)

	trak := &mp4io.Track{}
	trak.Add(&mp4io.TrackHeader{TrackID: id, Flags: mp4io.TKHDEnabled | mp4io.TKHDInMovie}, mdia)
	return trak
}

func testMovie(traks ...*mp4io.Track) *mp4io.Movie {
	moov := &mp4io.Movie{}
	moov.Add(mp4io.NewMovieHeader())
	for _, trak := range traks {
		moov.Add(trak)
	}
	return moov
}

// classicFile lays out ftyp, moov and one mdat holding data. The returned
// offset is the file position of data[0].
func classicFile(moov *mp4io.Movie, data []byte, large bool) (atoms []mp4io.Atom, dataStart int64) {
	ftyp := mp4io.NewFileType()
	mdat := &mp4io.MediaData{Data: data, LargeSize: large}
	dataStart = int64(ftyp.Len() + moov.Len() + mdat.HeaderLen())
	return []mp4io.Atom{ftyp, moov, mdat}, dataStart
}

func writeFile(t *testing.T, atoms ...mp4io.Atom) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.mp4")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = mp4io.WriteAtoms(f, atoms...)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}
