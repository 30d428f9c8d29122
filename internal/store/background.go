package store

import "time"

// StartAutosave saves the store every interval until StopAutosave.
// Round-based snapshots keep working alongside it.
func (s *Store) StartAutosave(interval time.Duration) {
	if s.autosaveStop != nil || interval <= 0 {
		return
	}
	s.autosaveStop = make(chan struct{})
	s.autosaveDone = make(chan struct{})

	go func() {
		defer close(s.autosaveDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.autosaveStop:
				return
			case <-ticker.C:
				if err := s.Save(); err != nil {
					s.log.Error().Err(err).Msg("autosave failed")
				}
			}
		}
	}()

	s.log.Info().Dur("interval", interval).Msg("started autosave")
}

// StopAutosave stops the autosave goroutine and waits for it to exit.
func (s *Store) StopAutosave() {
	if s.autosaveStop == nil {
		return
	}
	close(s.autosaveStop)
	<-s.autosaveDone
	s.autosaveStop = nil
	s.autosaveDone = nil
	s.log.Info().Msg("stopped autosave")
}
