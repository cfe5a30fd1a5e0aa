// Package replay keeps track of accepted TOTP time steps so that a code
// observed by an attacker cannot be submitted a second time while it is still
// inside the verification window.
//
// Two guards are provided. MemoryGuard keeps claims in a map with periodic
// cleanup. RedisGuard uses SET NX with an expiry, which makes the claim
// atomic across service instances.
//
// # Usage
//
//	client, err := replay.ConnectRedis(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	guard := replay.NewRedisGuard(client, cfg.KeyPrefix)
//
//	svc, err := twofactor.NewService(store, passwords, tfCfg,
//	    twofactor.WithReplayGuard(guard),
//	)
//
// Both guards satisfy twofactor.ReplayGuard.
package replay
