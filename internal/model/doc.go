// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the floor plan records exchanged with the model.
//
// Every stage of generation produces one of three documents, each with a
// single canonical shape:
//
//   - FloorPlan: the room allocation (total area, envelope, rooms with
//     proportions and areas)
//   - LayoutPlan: the allocation placed on a grid, one rectangle per room
//   - DoorPlan: door rectangles connecting pairs of rooms
//
// Each document has a matching JSON schema (FloorPlanSchema, LayoutPlanSchema,
// DoorPlanSchema) used to request structured output and to validate replies.
//
// # Usage
//
//	doors, removed := model.DedupDoors(plan.Doors)
//	fmt.Printf("removed %d duplicate doors\n", removed)
package model
