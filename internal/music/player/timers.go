package player

import "time"

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type timerKind int

const (
	timerIdle timerKind = iota
	timerAlone
)

// scheduleLocked replaces any pending timer on b.
func (e *Engine) scheduleLocked(b *Board, kind timerKind) {
	b.cancelTimerLocked()

	d := e.cfg.DisconnectTimeout
	if kind == timerAlone {
		d = e.cfg.AloneDisconnectTimeout
	}
	gen := b.timerGen
	b.timerKind = kind
	b.timer = e.sched.AfterFunc(d, func() { e.fireTimer(b, gen, kind) })
}

func (e *Engine) fireTimer(b *Board, gen uint64, kind timerKind) {
	b.mu.Lock()
	if b.destroyed || b.timerGen != gen {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	text := b.textChannel
	if kind == timerAlone {
		b.log.Info("Alone in voice channel, leaving")
	} else {
		b.log.Info("Idle timeout reached, leaving")
	}
	e.leaveAndClearLocked(b)
	b.mu.Unlock()

	if kind == timerAlone {
		e.notify(text, "Nobody's listening to me anymore, cya!")
	}
}

// StartAloneTimeout arms the alone timer for the guild's board, replacing
// whatever timer was pending.
func (e *Engine) StartAloneTimeout(guildID string) {
	b := e.boards.get(guildID)
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.log.Debug("Alone in voice channel, arming timer", "timeout", e.cfg.AloneDisconnectTimeout)
	e.scheduleLocked(b, timerAlone)
}

// StopAloneTimeout cancels a pending alone timer. An idle board gets its
// idle timer back so it still leaves eventually. A pending idle timer is
// left running.
func (e *Engine) StopAloneTimeout(guildID string) {
	b := e.boards.get(guildID)
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed || b.timer == nil || b.timerKind != timerAlone {
		return
	}
	b.cancelTimerLocked()
	if b.session == nil {
		e.scheduleLocked(b, timerIdle)
	}
}
