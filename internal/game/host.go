package game

// Host identity is decided by an ordered list of matching strategies,
// evaluated short-circuit. A caller is the host if any one matches:
// direct id equality, wallet equality with the recorded host (covers a
// rejoin under a fresh generated id), or being the first joined player when
// no wallet identity exists to compare.
type hostMatcher func(s *Session, playerID, wallet string) bool

var hostMatchers = []hostMatcher{
	matchHostID,
	matchHostWallet,
	matchFirstPlayer,
}

func matchHostID(s *Session, playerID, _ string) bool {
	return playerID != "" && playerID == s.HostID
}

func matchHostWallet(s *Session, _, wallet string) bool {
	if wallet == "" {
		return false
	}
	host := s.FindPlayer(s.HostID)
	return host != nil && host.WalletAddress == wallet
}

func matchFirstPlayer(s *Session, playerID, _ string) bool {
	return len(s.Players) > 0 && s.Players[0].ID == playerID
}

func (s *Session) IsHost(playerID, wallet string) bool {
	for _, match := range hostMatchers {
		if match(s, playerID, wallet) {
			return true
		}
	}
	return false
}

// FailoverHost reassigns the host to the first still-connected player after
// the current host drops. When nobody is connected the last-known host is
// kept and the session is left pending closure. Returns the new host, or nil
// when nothing changed.
func (s *Session) FailoverHost() *Player {
	for _, p := range s.Players {
		if p.Connected && !s.ExitedPlayers[p.ID] {
			if p.ID == s.HostID {
				return nil
			}
			s.HostID = p.ID
			s.Touch()
			return p
		}
	}
	return nil
}
