package ai

import "context"

// EchoGenerator replies with the request it was given. It lets the bot run
// end to end without calling a model.
type EchoGenerator struct{}

// Generate implements Generator.
func (EchoGenerator) Generate(_ context.Context, req Request) (Response, error) {
	prompt, err := req.Prompt()
	if err != nil {
		return Response{}, err
	}
	return Response{Reply: &prompt}, nil
}
