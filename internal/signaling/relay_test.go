package signaling

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

func TestOfferRelaysToCallee(t *testing.T) {
	pusher := new(mocks.PusherMock)
	relay := NewRelay(pusher)

	pusher.On("Push", "B", models.CallEvent{Event: models.EventCallOffer, From: "A", SDP: "sdp-offer"}).Return(true).Once()

	relay.Offer("A", "B", "sdp-offer")
	pusher.AssertExpectations(t)
}

func TestAnswerRelaysToCaller(t *testing.T) {
	pusher := new(mocks.PusherMock)
	relay := NewRelay(pusher)

	pusher.On("Push", "A", models.CallEvent{Event: models.EventCallAnswer, From: "B", SDP: "sdp-answer"}).Return(true).Once()

	relay.Answer("B", "A", "sdp-answer")
	pusher.AssertExpectations(t)
}

func TestIceCandidateIgnoresDeliveryMiss(t *testing.T) {
	pusher := new(mocks.PusherMock)
	relay := NewRelay(pusher)

	pusher.On("Push", "B", mock.Anything).Return(false).Once()

	// An offline peer drops the signal silently.
	relay.IceCandidate("A", "B", "candidate:1")
	pusher.AssertExpectations(t)
}
