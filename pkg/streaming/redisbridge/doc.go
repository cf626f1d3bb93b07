// Package redisbridge moves values between an mpsc channel and a Redis list.
//
// Forward drains a Receiver into a list with batched RPUSH calls, taking
// advantage of the Receiver's local buffer: everything a single lock swap
// delivered goes out in one round trip. Pump does the reverse, popping with
// BLPOP and sending on a Sender, so a Redis list can act as one more producer
// feeding a fan-in channel.
//
//	tx, rx := mpsc.New[Event]()
//	go redisbridge.Forward(ctx, client, rx, redisbridge.JSONCodec[Event]{}, redisbridge.Config{Key: "events"})
//
// Any go-redis client works; the bridge only needs the ListClient subset.
package redisbridge
