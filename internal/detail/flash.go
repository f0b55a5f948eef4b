package detail

func (v *View) setFlashLocked(kind, text string) {
	v.seq++
	v.flash = &Flash{
		Kind:      kind,
		Text:      text,
		ExpiresAt: v.opts.Now().Add(v.opts.FlashTTL),
		Seq:       v.seq,
	}
}

// currentFlashLocked returns a copy of the flash if it has not expired.
func (v *View) currentFlashLocked() *Flash {
	if v.flash == nil {
		return nil
	}
	if !v.opts.Now().Before(v.flash.ExpiresAt) {
		v.flash = nil
		return nil
	}
	f := *v.flash
	return &f
}

// DismissFlash clears the flash if it is still the one identified by seq.
// A newer message is never dismissed by an older timer.
func (v *View) DismissFlash(seq uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.flash == nil || v.flash.Seq != seq {
		return false
	}
	v.flash = nil
	return true
}
