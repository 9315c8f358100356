package channel

// OpenerStub is an in-memory LinkOpener for tests & dry runs. Schemes
// listed in OpenableSchemes probe as available; every opened link is
// recorded in order.
type OpenerStub struct {
	OpenableSchemes []string
	OpenedLinks     []string

	CanOpenError error
	OpenError    error

	Probes int
}

func (o *OpenerStub) CanOpen(link string) (bool, error) {
	o.Probes++

	if o.CanOpenError != nil {
		return false, o.CanOpenError
	}

	msg, err := ParseLink(link)
	if err != nil {
		return false, err
	}

	for _, scheme := range o.OpenableSchemes {
		if scheme == msg.Scheme {
			return true, nil
		}
	}

	return false, nil
}

func (o *OpenerStub) Open(link string) error {
	if o.OpenError != nil {
		return o.OpenError
	}

	o.OpenedLinks = append(o.OpenedLinks, link)
	return nil
}
