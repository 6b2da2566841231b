// Package serialization provides the .talg format for saving and loading
// compactly stored tensors together with their space descriptors.
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 Magic "TALG"
//	    0x04 Version (uint32 LE)
//	    0x08 Flags (uint32 LE)
//	    0x0C Reserved
//	    0x10 Header size (uint64 LE)
//	    0x18 Data size (uint64 LE)
//	    0x20 SHA-256 of the data section (32 bytes)
//	  [Header: JSON metadata]
//	  [Padding to 64 bytes]
//	  [Tensor data: little-endian compact storage]
//
// Only stored components are written: a symmetric 2-tensor of dimension n
// takes n(n+1)/2 scalars. The header records each tensor's space descriptor,
// so a reader rebuilds the storage scheme before touching the data.
//
// Example usage:
//
//	w, err := serialization.NewWriter("out.talg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//	err = w.WriteTensors([]serialization.Record{serialization.RecordOf("g", metric)}, nil)
//
//	r, err := serialization.Open("out.talg")
//	rec, err := r.Record("g")
//	g, err := serialization.TensorOf[float64](rec)
package serialization
