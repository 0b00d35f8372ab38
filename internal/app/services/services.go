package services

// Services defined in this package:
// - AuthService: credential verification and token issuance
// - ConnectionService: connection graph between students and alumni
// - ChatService: direct messaging threads
// - ConfessionService: anonymous confession pipeline with moderation
// - EventService: event registry and capacity-bounded registration
// - GroupService: interest groups with role-based membership
