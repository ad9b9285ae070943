package model

import "errors"

// Common errors used across the application
var (
	// Join errors, surfaced to the joining client as rejection codes
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrInvalidCode   = errors.New("invalid invite code")
	ErrBanned        = errors.New("player is banned from this room")
	ErrOnCooldown    = errors.New("player is on join cooldown")
	ErrWalletInUse   = errors.New("wallet already active in another session")
	ErrInvalidName   = errors.New("invalid display name")
	ErrInvalidAvatar = errors.New("invalid avatar")
	ErrJoinFailed    = errors.New("join failed")

	// Room / action errors
	ErrNotInRoom           = errors.New("player is not in room")
	ErrNotOwner            = errors.New("player is not the room owner")
	ErrNotDrawer           = errors.New("player is not the drawer")
	ErrGameInProgress      = errors.New("game is in progress")
	ErrNoGameInProgress    = errors.New("no game in progress")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")
	ErrInvalidSettings     = errors.New("invalid room settings")
	ErrInvalidWordChoice   = errors.New("invalid word choice")

	// Session errors
	ErrInvalidSession = errors.New("invalid or expired session")

	// Claim errors
	ErrNoReward        = errors.New("no reward available")
	ErrAlreadyClaimed  = errors.New("reward already claimed")
	ErrInvalidAddress  = errors.New("invalid payout address")
	ErrClaimNotFound   = errors.New("claim record not found")
	ErrPayoutFailed    = errors.New("payout executor failed")
	ErrRewardsNotReady = errors.New("rewards not computed yet")

	// Word bank errors
	ErrLanguageUnknown = errors.New("unknown word list language")
)
