package player

import (
	"fmt"
	"slices"

	"music-board/pkg/util"
)

// boardFor mirrors the lookup every command does: no guild or no voice
// channel on the caller means no board.
func (e *Engine) boardFor(req Request) *Board {
	if req.GuildID == "" || req.VoiceChannelID == "" {
		return nil
	}
	return e.boards.get(req.GuildID)
}

// withActive runs fn under the board lock when something is playing and
// the board is not on its way out.
func (e *Engine) withActive(req Request, idle string, fn func(b *Board) (string, error)) (string, error) {
	b := e.boardFor(req)
	if b == nil {
		return "", &UserError{Msg: idle}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active() {
		return "", &UserError{Msg: idle}
	}
	return fn(b)
}

// Skip ends the current song. With nothing queued the board leaves once
// the song has stopped.
func (e *Engine) Skip(req Request) (string, error) {
	return e.withActive(req, "Play a song first before trying to skip it!", func(b *Board) (string, error) {
		skipAll := len(b.queue) == 0
		if skipAll {
			b.disconnectImmediately = true
		}
		b.log.Info("Skipping", "title", b.lastSongPlayed.Title, "last", skipAll)
		b.session.End()

		if skipAll {
			return "Skipped! No more songs are in the queue, goodbye!", nil
		}
		return "Skipped!", nil
	})
}

// Seek restarts the current song at the given timestamp.
func (e *Engine) Seek(req Request, timestamp string) (string, error) {
	return e.withActive(req, "I cannot seek through a song when nothing is playing!", func(b *Board) (string, error) {
		song := b.lastSongPlayed
		if slices.Contains(e.cfg.SeekBlacklist, song.Provider) {
			return "", userErrorf("Unfortunately, seeking for `%s` is not available.", song.Provider)
		}
		secs, err := util.ParseTimestamp(timestamp)
		if err != nil {
			return "", userErrorf("`%s` is not a valid timestamp, try `90` or `1:30`.", timestamp)
		}

		song.Options.Seek = secs
		b.prepend(song)
		b.log.Info("Seeking", "title", song.Title, "seconds", secs)
		b.session.End()
		return fmt.Sprintf("Seeked current song to %d seconds!", secs), nil
	})
}

// Loop repeats the current song count more times, or forever when count is
// not positive.
func (e *Engine) Loop(req Request, count int) (string, error) {
	return e.withActive(req, "I cannot set a looping song when nothing is playing!", func(b *Board) (string, error) {
		title := b.lastSongPlayed.Title
		if count > 0 {
			b.looping = Looping{Mode: LoopCount, Count: count}
			return fmt.Sprintf("Looping current song (`%s`) **%d** times!", title, count), nil
		}
		b.looping = Looping{Mode: LoopOne}
		return fmt.Sprintf("Looping current song (`%s`)!", title), nil
	})
}

func (e *Engine) LoopAll(req Request) (string, error) {
	return e.withActive(req, "I cannot loop the player when nothing is playing!", func(b *Board) (string, error) {
		b.looping = Looping{Mode: LoopAll}
		return "Looping all song in the current playlist!", nil
	})
}

func (e *Engine) Unloop(req Request) (string, error) {
	return e.withActive(req, "I don't need to unloop anything : nothing is playing!", func(b *Board) (string, error) {
		b.looping = Looping{}
		return "Unlooped the current music playlist!", nil
	})
}

// TogglePause pauses or resumes output. A paused board still counts as
// playing.
func (e *Engine) TogglePause(req Request) (string, error) {
	return e.withActive(req, "Nothing is playing, there is nothing to pause!", func(b *Board) (string, error) {
		if b.paused {
			b.session.Resume()
			b.paused = false
			return "Resumed!", nil
		}
		b.session.Pause()
		b.paused = true
		return "Paused!", nil
	})
}

// Disconnect leaves the voice channel, after the current song has been cut
// when one is playing.
func (e *Engine) Disconnect(req Request) (string, error) {
	b := e.boardFor(req)
	if b == nil {
		return "", userErrorf("I'm not even playing a song :/")
	}

	b.mu.Lock()
	b.log.Info("Disconnect requested", "user", req.UserID)
	e.leaveAndClearLocked(b)
	b.mu.Unlock()
	return "Adios!", nil
}

// SetVolume changes the volume of the current output and remembers it for
// the channel.
func (e *Engine) SetVolume(req Request, level int) (string, error) {
	if level < 0 {
		return "", userErrorf("Volume can't be negative.")
	}

	const idle = "Nothing is playing, I can't change the volume!"
	b := e.boardFor(req)
	if b == nil {
		return "", &UserError{Msg: idle}
	}

	b.mu.Lock()
	ok := !b.destroyed && e.setVolumeLocked(b, level)
	b.mu.Unlock()
	if !ok {
		return "", &UserError{Msg: idle}
	}
	return fmt.Sprintf("Volume set to **%d**!", level), nil
}

// Volume reports the board's volume level.
func (e *Engine) Volume(req Request) (int, bool) {
	b := e.boardFor(req)
	if b == nil {
		return 0, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return 0, false
	}
	return b.volume, true
}

// setVolumeLocked applies level to the live output. The level is persisted
// only when it changed.
func (e *Engine) setVolumeLocked(b *Board, level int) bool {
	if b.session == nil {
		return false
	}
	b.session.SetVolumeLogarithmic(float64(level) / VolumeLog)
	if level != b.volume {
		b.volume = level
		e.settings.enqueue(b.key(), storageVolume(level))
	}
	return true
}

// Queue returns the caller's board state for listing.
func (e *Engine) Queue(req Request) (State, error) {
	b := e.boardFor(req)
	if b == nil {
		return State{}, userErrorf("Nothing is playing right now.")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return State{}, userErrorf("Nothing is playing right now.")
	}
	return b.snapshotLocked(), nil
}
