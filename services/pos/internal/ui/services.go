// Package ui provides the process-wide UI services every console view
// depends on: toast notifications, confirmation dialogs, icons and the
// template library.
package ui

import "errors"

// Services is the context handed to each view when it is built. It can only
// be assembled from fully registered services.
type Services struct {
	Renderer Renderer
	Toasts   Notifier
	Confirms Confirmer
	Icons    *IconRegistry
}

func NewServices(renderer Renderer, toasts Notifier, confirms Confirmer, icons *IconRegistry) (Services, error) {
	if renderer == nil {
		return Services{}, errors.New("ui services: renderer not registered")
	}
	if toasts == nil {
		return Services{}, errors.New("ui services: notification service not registered")
	}
	if confirms == nil {
		return Services{}, errors.New("ui services: confirmation service not registered")
	}
	if icons == nil {
		return Services{}, errors.New("ui services: icon registry not registered")
	}
	return Services{
		Renderer: renderer,
		Toasts:   toasts,
		Confirms: confirms,
		Icons:    icons,
	}, nil
}

// Ready reports whether every service is present.
func (s Services) Ready() bool {
	return s.Renderer != nil && s.Toasts != nil && s.Confirms != nil && s.Icons != nil
}
