// ABOUTME: Oto-based push backend
// ABOUTME: Writes go straight into a bounded PCM queue drained by a persistent oto player
package output

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/xaudio-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto only allows one context per process, so the device handle is shared
// and handed to one backend at a time.
var otoDevice struct {
	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate int
	channels   int
	inUse      bool
}

// Oto is the synchronous push backend. It plays at the stream's own rate,
// so no resampling happens on this path.
type Oto struct {
	player   bufferedPlayer
	queue    *pushQueue
	channels int
	once     sync.Once
}

// bufferedPlayer is the part of *oto.Player the backend needs
type bufferedPlayer interface {
	BufferedSize() int
	Close() error
}

// pushPadFrames bounds one padding read so the player never holds more
// than a few of them ahead of queued audio
const pushPadFrames = SamplesPerCallback / 8

// NewOto opens the push backend
func NewOto(cfg Config) (Backend, error) {
	otoDevice.mu.Lock()
	defer otoDevice.mu.Unlock()

	if otoDevice.inUse {
		return nil, unavailable("oto", fmt.Errorf("device already owned by another stream"))
	}

	if otoDevice.ctx != nil && (otoDevice.sampleRate != cfg.SampleRate || otoDevice.channels != cfg.Channels) {
		// oto doesn't support reinitialization with a new format
		return nil, unavailable("oto", fmt.Errorf("context fixed at %dHz %dch, want %dHz %dch",
			otoDevice.sampleRate, otoDevice.channels, cfg.SampleRate, cfg.Channels))
	}

	if otoDevice.ctx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: cfg.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(SamplesPerCallback) * time.Second / time.Duration(cfg.SampleRate),
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return nil, unavailable("oto", err)
		}
		<-readyChan

		otoDevice.ctx = ctx
		otoDevice.sampleRate = cfg.SampleRate
		otoDevice.channels = cfg.Channels
	} else if err := otoDevice.ctx.Resume(); err != nil {
		return nil, unavailable("oto", err)
	}

	queue := newPushQueue(cfg)
	player := otoDevice.ctx.NewPlayer(queue)
	// The default 0.5s read-ahead would dwarf the low-water mark
	player.SetBufferSize(SamplesPerCallback * cfg.Channels * 2)
	player.Play()
	otoDevice.inUse = true

	log.Printf("Audio output initialized: %dHz, %d channels (oto/push)", cfg.SampleRate, cfg.Channels)

	return &Oto{
		player:   player,
		queue:    queue,
		channels: cfg.Channels,
	}, nil
}

func (o *Oto) Kind() Kind { return KindPush }

// Write queues samples for the player, up to the high-water mark
func (o *Oto) Write(samples []float32) {
	o.queue.write(samples, o.playerBuffered())
}

// Remaining counts samples queued here plus those already inside the player
func (o *Oto) Remaining() int {
	return o.queue.remaining() + o.playerBuffered()
}

func (o *Oto) SetVolume(volume float32) {
	o.queue.setVolume(volume)
}

// Close releases the player and hands the shared context back
func (o *Oto) Close() error {
	var err error
	o.once.Do(func() {
		o.queue.close()
		err = o.player.Close()

		otoDevice.mu.Lock()
		defer otoDevice.mu.Unlock()
		if suspendErr := otoDevice.ctx.Suspend(); suspendErr != nil {
			log.Printf("Warning: oto suspend error: %v", suspendErr)
		}
		otoDevice.inUse = false
	})
	return err
}

// playerBuffered counts queued audio the player has read but not played.
// Padding it pulled while the queue was empty is not counted.
func (o *Oto) playerBuffered() int {
	if o.player == nil {
		return 0
	}
	return audio.AlignToChannels(o.queue.realInPlayer(o.player.BufferedSize())/2, o.channels)
}

// pushQueue is the io.Reader the oto player drains. Reads return queued
// audio only; an empty queue yields a bounded run of the neutral level so
// the device never stalls.
type pushQueue struct {
	mu            sync.Mutex
	data          []byte
	neutral       [2]byte
	volume        float32
	channels      int
	maxBufferSize int
	closed        bool
	scratch       []float32

	// reads handed to the player, oldest first, adjacent runs merged
	reads []pushRead
}

type pushRead struct {
	bytes int
	pad   bool
}

func newPushQueue(cfg Config) *pushQueue {
	q := &pushQueue{
		data:          make([]byte, 0, cfg.MaxBufferSize*2),
		volume:        cfg.Volume,
		channels:      cfg.Channels,
		maxBufferSize: cfg.MaxBufferSize,
	}
	audio.PutInt16LE(q.neutral[:], []float32{cfg.NeutralValue})
	return q
}

// write accepts whole frames while the total backlog stays under the
// high-water mark; buffered is what the player already holds
func (q *pushQueue) write(samples []float32, buffered int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	room := q.maxBufferSize - buffered - len(q.data)/2
	n := len(samples)
	if n > room {
		n = room
	}
	n = audio.AlignToChannels(n, q.channels)
	if n <= 0 {
		return
	}

	if cap(q.scratch) < n {
		q.scratch = make([]float32, n)
	}
	scaled := q.scratch[:n]
	for i, s := range samples[:n] {
		scaled[i] = s * q.volume
	}

	offset := len(q.data)
	q.data = append(q.data, make([]byte, n*2)...)
	audio.PutInt16LE(q.data[offset:], scaled)
}

// Read implements io.Reader for the oto player
func (q *pushQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, io.EOF
	}

	frame := 2 * q.channels
	if len(q.data) > 0 {
		n := copy(p, q.data)
		if n >= frame {
			n -= n % frame
		}
		q.data = q.data[:copy(q.data, q.data[n:])]
		q.record(n, false)
		return n, nil
	}

	n := min(len(p), pushPadFrames*frame)
	if n >= frame {
		n -= n % frame
	}
	for i := 0; i < n; i++ {
		p[i] = q.neutral[i%2]
	}
	q.record(n, true)
	return n, nil
}

func (q *pushQueue) record(n int, pad bool) {
	if n == 0 {
		return
	}
	if last := len(q.reads) - 1; last >= 0 && q.reads[last].pad == pad {
		q.reads[last].bytes += n
		return
	}
	q.reads = append(q.reads, pushRead{bytes: n, pad: pad})
}

// realInPlayer returns how many of the newest buffered bytes handed to the
// player were queued audio. Older reads have been played and are forgotten.
func (q *pushQueue) realInPlayer(buffered int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	queued := 0
	keep := len(q.reads)
	for i := len(q.reads) - 1; i >= 0 && buffered > 0; i-- {
		n := min(q.reads[i].bytes, buffered)
		if !q.reads[i].pad {
			queued += n
		}
		buffered -= n
		keep = i
	}
	q.reads = q.reads[:copy(q.reads, q.reads[keep:])]
	return queued
}

func (q *pushQueue) remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data) / 2
}

func (q *pushQueue) setVolume(volume float32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.volume = volume
}

func (q *pushQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.data = q.data[:0]
	q.reads = nil
}
