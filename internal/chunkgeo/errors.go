package chunkgeo

import "github.com/Schuldakt/StarBreaker/internal/starerr"

var errMissingPositionStream = starerr.New(starerr.InvalidStructure, "chunkgeo: compiled-mesh has no position stream")
