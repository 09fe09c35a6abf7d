// Package serialization implements the checkpoint container written to
// checkpoint.pt and best.pt.
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "TKPT"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: Header Size (uint64 LE)]
//	  0x18 [8 bytes: Data Size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the data section]
//	  0x40 [Header: JSON]
//	       [Padding to 64 bytes]
//	       [Data: float32 tensors (LE), then the extra metadata section]
//
// The extra metadata section holds arbitrary caller values encoded as a
// protobuf google.protobuf.Struct.
//
// Example usage:
//
//	header := serialization.Header{Epoch: 3, Loss: 0.12}
//	if _, err := serialization.Write(f, header, tensors, extra); err != nil {
//	    return err
//	}
//
//	ckpt, err := serialization.Read(f)
package serialization
