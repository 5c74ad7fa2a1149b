package browser

// AlertAccept accepts the displayed dialog. It fails with ErrNoAlert when none is shown.
func (b *Browser) AlertAccept() error {
	alert, err := b.alert()
	if err != nil {
		return err
	}
	return alert.Accept()
}

// AlertDismiss dismisses the displayed dialog.
func (b *Browser) AlertDismiss() error {
	alert, err := b.alert()
	if err != nil {
		return err
	}
	return alert.Dismiss()
}

// AlertText returns the message of the displayed dialog.
func (b *Browser) AlertText() (string, error) {
	alert, err := b.alert()
	if err != nil {
		return "", err
	}
	return alert.Text()
}

func (b *Browser) alert() (Alert, error) {
	if b.closed {
		return nil, ErrSessionClosed
	}
	alert, err := b.driver.Alert()
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrNoAlert
	}
	return alert, nil
}
