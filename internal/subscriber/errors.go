package subscriber

import (
	"fmt"

	"github.com/ViduraMC/Bakery-App/internal/notifier"
)

func errUnexpectedPayload(ev notifier.Event) error {
	return fmt.Errorf("%s: unexpected payload %T", ev.Name, ev.Payload)
}
