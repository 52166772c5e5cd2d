// Package shutdown runs cleanup hooks when the interactive shell ends.
//
// Hooks run once, in reverse registration order, bounded by a timeout.
// The trigger is either SIGINT/SIGTERM or the end of a context:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return history.Save() })
//	go h.WaitContext(ctx)
//	...
//	<-h.Done()
package shutdown
