package messages

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAll(t *testing.T, msgs ...Message) []byte {
	t.Helper()
	var stream []byte
	for _, m := range msgs {
		b, err := Encode(m)
		require.NoError(t, err)
		stream = append(stream, b...)
	}
	return stream
}

func TestDecoder_byteByByte(t *testing.T) {
	want := []Message{
		&ConnectionInfo{Name: "tester"},
		&InputState{Forward: true, CameraY: 90},
		&Ping{},
		&BoxUpdateMotion{ID: 5, Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()},
		&ServerMessage{Text: "hola"},
	}
	stream := encodeAll(t, want...)

	dec := NewDecoder()
	var got []Message
	for i := range stream {
		dec.Feed(stream[i : i+1])
		for {
			m, err := dec.Next()
			require.NoError(t, err)
			if m == nil {
				break
			}
			got = append(got, m)
		}
	}

	assert.Equal(t, want, got)
	assert.Equal(t, 0, dec.Buffered())
}

func TestDecoder_partialFrameIsHeldBack(t *testing.T) {
	stream := encodeAll(t, &Spawn{BoxID: 3}, &RemoveBox{BoxID: 4})

	dec := NewDecoder()
	dec.Feed(stream[:10])

	m, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, &Spawn{BoxID: 3}, m)

	m, err = dec.Next()
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 2, dec.Buffered())

	dec.Feed(stream[10:])
	m, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, &RemoveBox{BoxID: 4}, m)
}

func TestDecoder_unknownType(t *testing.T) {
	dec := NewDecoder()
	dec.Feed([]byte{0, 0, 0, 42, 1, 2, 3})

	m, err := dec.Next()
	assert.Nil(t, m)
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
}

func TestReadMessage(t *testing.T) {
	want := []Message{
		&SetHealth{Health: 90},
		&ServerMessage{Text: "a se la dio a b"},
		&Ping{},
	}
	r := bytes.NewReader(encodeAll(t, want...))

	for _, w := range want {
		got, err := ReadMessage(r)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	_, err := ReadMessage(r)
	assert.Error(t, err)
}

func TestWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, &NotifyHit{EmitterBoxID: 1, VictimBoxID: 2}))

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, &NotifyHit{EmitterBoxID: 1, VictimBoxID: 2}, got)
}
