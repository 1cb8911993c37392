package mesh

import (
	"fmt"

	metis "github.com/notargets/go-metis"
)

// PartitionKWay computes a balanced k-way METIS partition of the real-cell
// adjacency graph, minimizing communication volume across the cuts. The
// result feeds Decompose. For nparts < 2 every cell lands on rank 0.
func PartitionKWay(m *Mesh, nparts int) ([]int, error) {
	n := m.NRealCells
	if nparts < 2 {
		return make([]int, n), nil
	}

	adj := make([][]int32, n)
	for _, ec := range m.EdgesCells {
		i, j := ec[0], ec[1]
		if i == j || i >= n || j >= n {
			continue
		}
		adj[i] = append(adj[i], int32(j))
		adj[j] = append(adj[j], int32(i))
	}
	xadj := make([]int32, n+1)
	var adjncy []int32
	for i := 0; i < n; i++ {
		adjncy = append(adjncy, adj[i]...)
		xadj[i+1] = int32(len(adjncy))
	}

	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("mesh: METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeVol

	ubvec := []float32{1.05}
	part32, _, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, nil, nil, int32(nparts), nil, ubvec, opts)
	if err != nil {
		return nil, fmt.Errorf("mesh: METIS partitioning: %w", err)
	}

	part := make([]int, n)
	for i := range part {
		part[i] = int(part32[i])
	}
	return part, nil
}
